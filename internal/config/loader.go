package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "verdict.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "VERDICT_PORT")
	setString(&cfg.Server.CORSOrigin, "VERDICT_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "VERDICT_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "VERDICT_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "VERDICT_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "VERDICT_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "VERDICT_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Logging.Level, "VERDICT_LOG_LEVEL")
	setString(&cfg.Logging.Service, "VERDICT_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "VERDICT_LOG_ASYNC")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setInt64(&cfg.Cache.MaxSizeMB, "VERDICT_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "VERDICT_CACHE_TTL")
	setInt(&cfg.Consensus.MaxRounds, "VERDICT_CONSENSUS_MAX_ROUNDS")
	setInt(&cfg.Consensus.MinOverlap, "VERDICT_CONSENSUS_MIN_OVERLAP")
	setFloat64(&cfg.Consensus.MaxStdDev, "VERDICT_CONSENSUS_MAX_STD_DEV")
	setInt(&cfg.Vote.TopN, "VERDICT_VOTE_TOP_N")
	setFloat64(&cfg.Gates.SpecApprovalThreshold, "VERDICT_GATE_SPEC_THRESHOLD")
	setInt(&cfg.Gates.SpecRequiredRounds, "VERDICT_GATE_SPEC_ROUNDS")
	setFloat64(&cfg.Gates.FixConfidenceThreshold, "VERDICT_GATE_FIX_CONFIDENCE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Consensus.MaxRounds < 1 {
		return errors.New("consensus.max_rounds must be >= 1")
	}
	if cfg.Consensus.MinOverlap < 1 {
		return errors.New("consensus.min_overlap must be >= 1")
	}
	if cfg.Consensus.MaxStdDev <= 0 {
		return errors.New("consensus.max_std_dev must be > 0")
	}
	if cfg.Vote.TopN < 1 {
		return errors.New("vote.top_n must be >= 1")
	}
	if cfg.Gates.SpecApprovalThreshold <= 0 || cfg.Gates.SpecApprovalThreshold > 1 {
		return errors.New("gates.spec_approval_threshold must be in (0, 1]")
	}
	if cfg.Gates.SpecRequiredRounds < 1 {
		return errors.New("gates.spec_required_rounds must be >= 1")
	}
	if cfg.Gates.FixConfidenceThreshold <= 0 || cfg.Gates.FixConfidenceThreshold > 1 {
		return errors.New("gates.fix_confidence_threshold must be in (0, 1]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
