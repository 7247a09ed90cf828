package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	vhttp "github.com/quorumforge/verdict/internal/adapter/http"
	vnats "github.com/quorumforge/verdict/internal/adapter/nats"
	"github.com/quorumforge/verdict/internal/adapter/otel"
	"github.com/quorumforge/verdict/internal/adapter/postgres"
	"github.com/quorumforge/verdict/internal/adapter/ristretto"
	"github.com/quorumforge/verdict/internal/adapter/tiered"
	"github.com/quorumforge/verdict/internal/adapter/ws"
	"github.com/quorumforge/verdict/internal/config"
	"github.com/quorumforge/verdict/internal/logger"
	"github.com/quorumforge/verdict/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"consensus_max_rounds", cfg.Consensus.MaxRounds,
		"spec_threshold", cfg.Gates.SpecApprovalThreshold,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	shutdownOtel, err := otel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := vnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() {
		if err := queue.Drain(); err != nil {
			slog.Error("nats drain", "error", err)
		}
	}()

	l1, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()

	// --- Services ---
	hub := ws.NewHub()
	defer hub.Shutdown()
	store := postgres.NewStore(pool)
	cachedStore := tiered.NewStore(store, l1, cfg.Cache.TTL)
	audit := vnats.NewAuditPublisher(queue)

	runs := service.NewRunService(cachedStore, cachedStore)

	consensusSvc := service.NewConsensusService(cfg.Consensus, cfg.Vote)
	consensusSvc.SetQueue(queue)
	consensusSvc.SetHub(hub)
	consensusSvc.SetMetrics(metrics)

	// Gates read the store directly; cached state must never decide approvals.
	gatekeeper := service.NewGatekeeper(store, audit)
	gatekeeper.SetHub(hub)
	gatekeeper.SetMetrics(metrics)

	overrides := service.NewOverrideService(cachedStore)
	overrides.SetQueue(queue)
	overrides.SetHub(hub)
	overrides.SetMetrics(metrics)

	handlers := vhttp.NewHandlers(
		runs,
		consensusSvc,
		gatekeeper,
		service.NewSpecGate(store, cfg.Gates),
		service.NewGreenlightGate(store),
		service.NewBugFixGate(store, cfg.Gates),
		overrides,
	)

	// --- HTTP ---
	r := chi.NewRouter()
	r.Use(vhttp.SecurityHeaders)
	r.Use(vhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(vhttp.Logger)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	r.Get("/health", healthHandler(pool.Ping, queue.IsConnected))

	vhttp.MountRoutes(r, handlers, hub)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthHandler reports readiness of the backing services.
func healthHandler(pingDB func(context.Context) error, natsUp func() bool) http.HandlerFunc {
	type healthStatus struct {
		Status   string `json:"status"`
		Postgres string `json:"postgres"`
		NATS     string `json:"nats"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Postgres: "up", NATS: "up"}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pingDB(ctx); err != nil {
			status.Status = "degraded"
			status.Postgres = "down"
			code = http.StatusServiceUnavailable
		}
		if !natsUp() {
			status.Status = "degraded"
			status.NATS = "down"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
