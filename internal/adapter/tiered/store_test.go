package tiered

import (
	"context"
	"testing"
	"time"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/cache"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

var (
	_ statestore.Store = (*Store)(nil)
	_ cache.Cache      = (*mapCache)(nil)
)

// mapCache is a TTL-less in-memory cache.Cache for tests.
type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string][]byte)} }

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

// countingStore wraps an in-memory store and counts reads.
type countingStore struct {
	features map[string]*feature.RunState
	bugs     map[string]*bug.Bug
	manual   map[string]bool
	reads    int
}

func newCountingStore() *countingStore {
	return &countingStore{
		features: make(map[string]*feature.RunState),
		bugs:     make(map[string]*bug.Bug),
		manual:   make(map[string]bool),
	}
}

func (c *countingStore) CreateFeature(_ context.Context, req feature.CreateRequest) (*feature.RunState, error) {
	rs := &feature.RunState{FeatureID: req.FeatureID, Name: req.Name, Status: feature.StatusAwaitingApproval}
	c.features[req.FeatureID] = rs
	return rs, nil
}

func (c *countingStore) GetRunState(_ context.Context, id string) (*feature.RunState, error) {
	c.reads++
	rs, ok := c.features[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rs, nil
}

func (c *countingStore) AddRoundScore(_ context.Context, id string, score feature.RoundScore) error {
	rs, ok := c.features[id]
	if !ok {
		return domain.ErrNotFound
	}
	rs.Scores = append(rs.Scores, score)
	return nil
}

func (c *countingStore) SetIssues(_ context.Context, id string, issues []feature.Issue) error {
	c.features[id].Issues = issues
	return nil
}

func (c *countingStore) ApproveSpec(_ context.Context, id string) error {
	c.features[id].Status = feature.StatusSpecApproved
	return nil
}

func (c *countingStore) GreenlightFeature(_ context.Context, id string) error {
	c.features[id].Status = feature.StatusGreenlit
	return nil
}

func (c *countingStore) VetoSpecApproval(_ context.Context, id, _ string) error {
	c.features[id].Status = feature.StatusAwaitingApproval
	return nil
}

func (c *countingStore) CreateBug(_ context.Context, req bug.CreateRequest) (*bug.Bug, error) {
	b := &bug.Bug{ID: req.ID, Title: req.Title, Status: bug.StatusPlanned}
	c.bugs[req.ID] = b
	return b, nil
}

func (c *countingStore) GetBug(_ context.Context, id string) (*bug.Bug, error) {
	c.reads++
	b, ok := c.bugs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (c *countingStore) SetFixPlan(_ context.Context, id string, plan bug.FixPlan) error {
	c.bugs[id].Plan = &plan
	return nil
}

func (c *countingStore) ApproveFix(_ context.Context, id string) error {
	c.bugs[id].Status = bug.StatusFixApproved
	return nil
}

func (c *countingStore) VetoFixApproval(_ context.Context, id, _ string) error {
	c.bugs[id].Status = bug.StatusPlanned
	return nil
}

func (c *countingStore) SetManualMode(_ context.Context, id string, enabled bool) error {
	c.manual[id] = enabled
	return nil
}

func (c *countingStore) IsManualMode(_ context.Context, id string) (bool, error) {
	c.reads++
	return c.manual[id], nil
}

func TestGetRunStateReadThrough(t *testing.T) {
	inner := newCountingStore()
	cached := NewStore(inner, newMapCache(), time.Minute)
	ctx := context.Background()

	if _, err := cached.CreateFeature(ctx, feature.CreateRequest{FeatureID: "feat-1", Name: "payments"}); err != nil {
		t.Fatal(err)
	}

	if _, err := cached.GetRunState(ctx, "feat-1"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := cached.GetRunState(ctx, "feat-1"); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if inner.reads != 1 {
		t.Errorf("inner reads = %d, want 1 (second read served from cache)", inner.reads)
	}
}

func TestWritesInvalidateCache(t *testing.T) {
	inner := newCountingStore()
	cached := NewStore(inner, newMapCache(), time.Minute)
	ctx := context.Background()

	if _, err := cached.CreateFeature(ctx, feature.CreateRequest{FeatureID: "feat-1", Name: "payments"}); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.GetRunState(ctx, "feat-1"); err != nil {
		t.Fatal(err)
	}

	avg := 0.9
	if err := cached.AddRoundScore(ctx, "feat-1", feature.RoundScore{Round: 1, Average: &avg}); err != nil {
		t.Fatal(err)
	}

	rs, err := cached.GetRunState(ctx, "feat-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Scores) != 1 {
		t.Errorf("scores = %+v, want the fresh write visible after invalidation", rs.Scores)
	}
}

func TestGetBugReadThrough(t *testing.T) {
	inner := newCountingStore()
	cached := NewStore(inner, newMapCache(), time.Minute)
	ctx := context.Background()

	if _, err := cached.CreateBug(ctx, bug.CreateRequest{ID: "bug-1", Title: "crash"}); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if _, err := cached.GetBug(ctx, "bug-1"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.reads != 1 {
		t.Errorf("inner reads = %d, want 1", inner.reads)
	}

	if err := cached.SetFixPlan(ctx, "bug-1", bug.FixPlan{Confidence: 0.9, RiskLevel: bug.RiskLow}); err != nil {
		t.Fatal(err)
	}
	b, err := cached.GetBug(ctx, "bug-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Plan == nil {
		t.Error("fresh plan not visible after invalidation")
	}
}

func TestIsManualModeBypassesCache(t *testing.T) {
	inner := newCountingStore()
	cached := NewStore(inner, newMapCache(), time.Minute)
	ctx := context.Background()

	for range 3 {
		if _, err := cached.IsManualMode(ctx, "feat-1"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.reads != 3 {
		t.Errorf("inner reads = %d, want 3 (manual mode is never cached)", inner.reads)
	}
}

func TestMissingSubjectNotCached(t *testing.T) {
	inner := newCountingStore()
	cached := NewStore(inner, newMapCache(), time.Minute)
	ctx := context.Background()

	if _, err := cached.GetRunState(ctx, "nope"); err == nil {
		t.Fatal("expected error for missing feature")
	}
	if _, err := cached.GetRunState(ctx, "nope"); err == nil {
		t.Fatal("expected error for missing feature")
	}
	if inner.reads != 2 {
		t.Errorf("inner reads = %d, want 2 (misses are not cached)", inner.reads)
	}
}
