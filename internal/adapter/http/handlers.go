package http

import (
	"log/slog"
	"net/http"

	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/service"
)

// maxBodySize limits JSON request bodies to 1 MiB.
const maxBodySize = 1 << 20

// Handlers bundles the HTTP handlers over the Verdict services.
type Handlers struct {
	runs       *service.RunService
	consensus  *service.ConsensusService
	gatekeeper *service.Gatekeeper
	specGate   *service.SpecGate
	greenlight *service.GreenlightGate
	bugfix     *service.BugFixGate
	overrides  *service.OverrideService
}

// NewHandlers creates the handler set.
func NewHandlers(
	runs *service.RunService,
	consensus *service.ConsensusService,
	gatekeeper *service.Gatekeeper,
	specGate *service.SpecGate,
	greenlight *service.GreenlightGate,
	bugfix *service.BugFixGate,
	overrides *service.OverrideService,
) *Handlers {
	return &Handlers{
		runs:       runs,
		consensus:  consensus,
		gatekeeper: gatekeeper,
		specGate:   specGate,
		greenlight: greenlight,
		bugfix:     bugfix,
		overrides:  overrides,
	}
}

type evaluateRequest struct {
	Rankings [][]string `json:"rankings"`
	Round    int        `json:"round"`
}

// EvaluateConsensus measures panel agreement for one debate round.
func (h *Handlers) EvaluateConsensus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[evaluateRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	res := h.consensus.EvaluateRound(r.Context(), req.Rankings, req.Round)
	writeJSON(w, http.StatusOK, res)
}

type aggregateRequest struct {
	Rankings map[string][]string `json:"rankings"`
	Weights  map[string]float64  `json:"weights"`
	TopN     int                 `json:"top_n"`
}

type aggregateResponse struct {
	Priorities []string `json:"priorities"`
}

// AggregateVotes fuses panel rankings into one weighted priority list.
func (h *Handlers) AggregateVotes(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[aggregateRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	priorities := h.consensus.AggregateVotes(r.Context(), req.Rankings, req.Weights, req.TopN)
	writeJSON(w, http.StatusOK, aggregateResponse{Priorities: priorities})
}

// CreateFeature registers a new feature run.
func (h *Handlers) CreateFeature(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[feature.CreateRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	rs, err := h.runs.CreateFeature(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "feature not found")
		return
	}
	writeJSON(w, http.StatusCreated, rs)
}

// GetFeature returns a feature run's current state.
func (h *Handlers) GetFeature(w http.ResponseWriter, r *http.Request) {
	rs, err := h.runs.GetRunState(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "feature not found")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// AddScore appends one debate round score to a feature run.
func (h *Handlers) AddScore(w http.ResponseWriter, r *http.Request) {
	score, ok := readJSON[feature.RoundScore](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.runs.AddRoundScore(r.Context(), urlParam(r, "id"), score); err != nil {
		writeDomainError(w, err, "feature not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetIssues replaces a feature run's issue list.
func (h *Handlers) SetIssues(w http.ResponseWriter, r *http.Request) {
	issues, ok := readJSON[[]feature.Issue](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.runs.SetIssues(r.Context(), urlParam(r, "id"), issues); err != nil {
		writeDomainError(w, err, "feature not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveSpec runs the spec gate for a feature.
func (h *Handlers) ApproveSpec(w http.ResponseWriter, r *http.Request) {
	h.runGate(w, r, h.specGate, urlParam(r, "id"))
}

// Greenlight runs the greenlight gate for a feature.
func (h *Handlers) Greenlight(w http.ResponseWriter, r *http.Request) {
	h.runGate(w, r, h.greenlight, urlParam(r, "id"))
}

// ApproveFix runs the bug fix gate for a bug.
func (h *Handlers) ApproveFix(w http.ResponseWriter, r *http.Request) {
	h.runGate(w, r, h.bugfix, urlParam(r, "id"))
}

// runGate evaluates one gate and writes the decision. An audit write
// failure after a successful transition is logged; the decision stands.
func (h *Handlers) runGate(w http.ResponseWriter, r *http.Request, gate service.Gate, subjectID string) {
	dec, err := h.gatekeeper.ApproveIfReady(r.Context(), gate, subjectID)
	if err != nil {
		if dec == nil {
			writeInternalError(w, err)
			return
		}
		slog.Error("audit write failed after approval", "subject_id", subjectID, "error", err)
	}
	writeJSON(w, http.StatusOK, dec)
}

type vetoRequest struct {
	Reason string `json:"reason"`
}

// VetoSpec reverts a feature's spec approval.
func (h *Handlers) VetoSpec(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vetoRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.overrides.VetoSpec(r.Context(), urlParam(r, "id"), req.Reason); err != nil {
		writeDomainError(w, err, "feature not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VetoFix reverts a bug's fix approval.
func (h *Handlers) VetoFix(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vetoRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.overrides.VetoFix(r.Context(), urlParam(r, "id"), req.Reason); err != nil {
		writeDomainError(w, err, "bug not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type manualModeRequest struct {
	Enabled bool `json:"enabled"`
}

// SetManualMode toggles the per-subject kill switch.
func (h *Handlers) SetManualMode(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[manualModeRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.overrides.SetManualMode(r.Context(), urlParam(r, "id"), req.Enabled); err != nil {
		writeDomainError(w, err, "subject not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateBug registers a new bug run.
func (h *Handlers) CreateBug(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[bug.CreateRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	b, err := h.runs.CreateBug(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "bug not found")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBug returns a bug run's current state.
func (h *Handlers) GetBug(w http.ResponseWriter, r *http.Request) {
	b, err := h.runs.GetBug(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "bug not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SetFixPlan records the proposed fix for a bug.
func (h *Handlers) SetFixPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := readJSON[bug.FixPlan](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := h.runs.SetFixPlan(r.Context(), urlParam(r, "id"), plan); err != nil {
		writeDomainError(w, err, "bug not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
