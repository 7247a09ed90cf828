package service

import (
	"context"
	"time"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/auditlog"
	"github.com/quorumforge/verdict/internal/port/messagequeue"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// Ensure the mocks implement their ports at compile time.
var (
	_ statestore.Store   = (*mockStore)(nil)
	_ auditlog.Log       = (*mockAudit)(nil)
	_ messagequeue.Queue = (*mockQueue)(nil)
)

// mockStore is a minimal in-memory implementation of statestore.Store for testing.
type mockStore struct {
	features map[string]*feature.RunState
	bugs     map[string]*bug.Bug
	manual   map[string]bool

	// transitions records every state-change call in order.
	transitions []string

	// Error hooks, set these to inject failures.
	getRunStateErr error
	getBugErr      error
	approveSpecErr error
	greenlightErr  error
	approveFixErr  error
	manualModeErr  error
	vetoErr        error
}

func newMockStore() *mockStore {
	return &mockStore{
		features: make(map[string]*feature.RunState),
		bugs:     make(map[string]*bug.Bug),
		manual:   make(map[string]bool),
	}
}

func (m *mockStore) CreateFeature(_ context.Context, req feature.CreateRequest) (*feature.RunState, error) {
	if _, ok := m.features[req.FeatureID]; ok {
		return nil, domain.ErrConflict
	}
	rs := &feature.RunState{
		FeatureID: req.FeatureID,
		Name:      req.Name,
		Status:    feature.StatusAwaitingApproval,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.features[req.FeatureID] = rs
	return rs, nil
}

func (m *mockStore) GetRunState(_ context.Context, featureID string) (*feature.RunState, error) {
	if m.getRunStateErr != nil {
		return nil, m.getRunStateErr
	}
	rs, ok := m.features[featureID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rs, nil
}

func (m *mockStore) AddRoundScore(_ context.Context, featureID string, score feature.RoundScore) error {
	rs, ok := m.features[featureID]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Scores = append(rs.Scores, score)
	return nil
}

func (m *mockStore) SetIssues(_ context.Context, featureID string, issues []feature.Issue) error {
	rs, ok := m.features[featureID]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Issues = issues
	return nil
}

func (m *mockStore) ApproveSpec(_ context.Context, featureID string) error {
	if m.approveSpecErr != nil {
		return m.approveSpecErr
	}
	rs, ok := m.features[featureID]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Status = feature.StatusSpecApproved
	m.transitions = append(m.transitions, "approve_spec:"+featureID)
	return nil
}

func (m *mockStore) GreenlightFeature(_ context.Context, featureID string) error {
	if m.greenlightErr != nil {
		return m.greenlightErr
	}
	rs, ok := m.features[featureID]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Status = feature.StatusGreenlit
	m.transitions = append(m.transitions, "greenlight:"+featureID)
	return nil
}

func (m *mockStore) VetoSpecApproval(_ context.Context, featureID, _ string) error {
	if m.vetoErr != nil {
		return m.vetoErr
	}
	rs, ok := m.features[featureID]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Status = feature.StatusAwaitingApproval
	m.transitions = append(m.transitions, "veto_spec:"+featureID)
	return nil
}

func (m *mockStore) CreateBug(_ context.Context, req bug.CreateRequest) (*bug.Bug, error) {
	if _, ok := m.bugs[req.ID]; ok {
		return nil, domain.ErrConflict
	}
	b := &bug.Bug{
		ID:        req.ID,
		Title:     req.Title,
		Status:    bug.StatusPlanned,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.bugs[req.ID] = b
	return b, nil
}

func (m *mockStore) GetBug(_ context.Context, bugID string) (*bug.Bug, error) {
	if m.getBugErr != nil {
		return nil, m.getBugErr
	}
	b, ok := m.bugs[bugID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (m *mockStore) SetFixPlan(_ context.Context, bugID string, plan bug.FixPlan) error {
	b, ok := m.bugs[bugID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Plan = &plan
	return nil
}

func (m *mockStore) ApproveFix(_ context.Context, bugID string) error {
	if m.approveFixErr != nil {
		return m.approveFixErr
	}
	b, ok := m.bugs[bugID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = bug.StatusFixApproved
	m.transitions = append(m.transitions, "approve_fix:"+bugID)
	return nil
}

func (m *mockStore) VetoFixApproval(_ context.Context, bugID, _ string) error {
	if m.vetoErr != nil {
		return m.vetoErr
	}
	b, ok := m.bugs[bugID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = bug.StatusPlanned
	m.transitions = append(m.transitions, "veto_fix:"+bugID)
	return nil
}

func (m *mockStore) SetManualMode(_ context.Context, subjectID string, enabled bool) error {
	if m.manualModeErr != nil {
		return m.manualModeErr
	}
	m.manual[subjectID] = enabled
	return nil
}

func (m *mockStore) IsManualMode(_ context.Context, subjectID string) (bool, error) {
	if m.manualModeErr != nil {
		return false, m.manualModeErr
	}
	return m.manual[subjectID], nil
}

// mockAudit records auto-approval audit entries.
type mockAudit struct {
	entries []approval.AuditEntry
	err     error
}

func (m *mockAudit) LogAutoApproval(_ context.Context, kind approval.Kind, subjectID, reason string) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, approval.AuditEntry{
		Kind:      kind,
		SubjectID: subjectID,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	return nil
}

// mockQueue records published messages.
type mockQueue struct {
	published  []publishedMsg
	publishErr error
}

type publishedMsg struct {
	subject string
	data    []byte
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedMsg{subject: subject, data: data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }
