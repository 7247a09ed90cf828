package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
)

// Store implements statestore.Store using PostgreSQL. Gate transitions are
// guarded by the subject's current status, so a concurrent duplicate
// approval surfaces as domain.ErrConflict instead of silently re-applying.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Features ---

func (s *Store) CreateFeature(ctx context.Context, req feature.CreateRequest) (*feature.RunState, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO features (feature_id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (feature_id) DO NOTHING
		 RETURNING feature_id, name, status, manual_mode, scores, issues, version, created_at, updated_at`,
		req.FeatureID, req.Name)

	rs, err := scanRunState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create feature %s: %w", req.FeatureID, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create feature %s: %w", req.FeatureID, err)
	}
	return rs, nil
}

func (s *Store) GetRunState(ctx context.Context, featureID string) (*feature.RunState, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT feature_id, name, status, manual_mode, scores, issues, version, created_at, updated_at
		 FROM features WHERE feature_id = $1`, featureID)

	rs, err := scanRunState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get feature %s: %w", featureID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feature %s: %w", featureID, err)
	}
	return rs, nil
}

func (s *Store) AddRoundScore(ctx context.Context, featureID string, score feature.RoundScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE features
		 SET scores = scores || $2::jsonb, version = version + 1, updated_at = now()
		 WHERE feature_id = $1`,
		featureID, data)
	if err != nil {
		return fmt.Errorf("add score for %s: %w", featureID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add score for %s: %w", featureID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) SetIssues(ctx context.Context, featureID string, issues []feature.Issue) error {
	if issues == nil {
		issues = []feature.Issue{}
	}
	data, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE features
		 SET issues = $2::jsonb, version = version + 1, updated_at = now()
		 WHERE feature_id = $1`,
		featureID, data)
	if err != nil {
		return fmt.Errorf("set issues for %s: %w", featureID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set issues for %s: %w", featureID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ApproveSpec(ctx context.Context, featureID string) error {
	return s.transitionFeature(ctx, featureID,
		feature.StatusAwaitingApproval, feature.StatusSpecApproved, "approve spec")
}

func (s *Store) GreenlightFeature(ctx context.Context, featureID string) error {
	return s.transitionFeature(ctx, featureID,
		feature.StatusSpecApproved, feature.StatusGreenlit, "greenlight")
}

func (s *Store) VetoSpecApproval(ctx context.Context, featureID, _ string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE features
		 SET status = $2, version = version + 1, updated_at = now()
		 WHERE feature_id = $1 AND status <> $2`,
		featureID, feature.StatusAwaitingApproval)
	if err != nil {
		return fmt.Errorf("veto spec approval for %s: %w", featureID, err)
	}
	if tag.RowsAffected() == 0 {
		return s.featureMiss(ctx, featureID, "veto spec approval")
	}
	return nil
}

// transitionFeature moves a feature from one status to the next.
func (s *Store) transitionFeature(ctx context.Context, featureID string, from, to feature.Status, op string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE features
		 SET status = $3, version = version + 1, updated_at = now()
		 WHERE feature_id = $1 AND status = $2`,
		featureID, from, to)
	if err != nil {
		return fmt.Errorf("%s for %s: %w", op, featureID, err)
	}
	if tag.RowsAffected() == 0 {
		return s.featureMiss(ctx, featureID, op)
	}
	return nil
}

// featureMiss distinguishes a missing feature from a status conflict after
// a zero-row update.
func (s *Store) featureMiss(ctx context.Context, featureID, op string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM features WHERE feature_id = $1)`, featureID).Scan(&exists); err != nil {
		return fmt.Errorf("%s for %s: %w", op, featureID, err)
	}
	if !exists {
		return fmt.Errorf("%s for %s: %w", op, featureID, domain.ErrNotFound)
	}
	return fmt.Errorf("%s for %s: %w", op, featureID, domain.ErrConflict)
}

// --- Bugs ---

func (s *Store) CreateBug(ctx context.Context, req bug.CreateRequest) (*bug.Bug, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO bugs (id, title)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING id, title, status, manual_mode, plan, version, created_at, updated_at`,
		req.ID, req.Title)

	b, err := scanBug(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create bug %s: %w", req.ID, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create bug %s: %w", req.ID, err)
	}
	return b, nil
}

func (s *Store) GetBug(ctx context.Context, bugID string) (*bug.Bug, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, status, manual_mode, plan, version, created_at, updated_at
		 FROM bugs WHERE id = $1`, bugID)

	b, err := scanBug(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get bug %s: %w", bugID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bug %s: %w", bugID, err)
	}
	return b, nil
}

func (s *Store) SetFixPlan(ctx context.Context, bugID string, plan bug.FixPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal fix plan: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE bugs
		 SET plan = $2::jsonb, version = version + 1, updated_at = now()
		 WHERE id = $1`,
		bugID, data)
	if err != nil {
		return fmt.Errorf("set fix plan for %s: %w", bugID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set fix plan for %s: %w", bugID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ApproveFix(ctx context.Context, bugID string) error {
	return s.transitionBug(ctx, bugID, bug.StatusPlanned, bug.StatusFixApproved, "approve fix")
}

func (s *Store) VetoFixApproval(ctx context.Context, bugID, _ string) error {
	return s.transitionBug(ctx, bugID, bug.StatusFixApproved, bug.StatusPlanned, "veto fix approval")
}

func (s *Store) transitionBug(ctx context.Context, bugID string, from, to bug.Status, op string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bugs
		 SET status = $3, version = version + 1, updated_at = now()
		 WHERE id = $1 AND status = $2`,
		bugID, from, to)
	if err != nil {
		return fmt.Errorf("%s for %s: %w", op, bugID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM bugs WHERE id = $1)`, bugID).Scan(&exists); err != nil {
			return fmt.Errorf("%s for %s: %w", op, bugID, err)
		}
		if !exists {
			return fmt.Errorf("%s for %s: %w", op, bugID, domain.ErrNotFound)
		}
		return fmt.Errorf("%s for %s: %w", op, bugID, domain.ErrConflict)
	}
	return nil
}

// --- Manual mode ---

// SetManualMode flips the kill switch for a feature or bug subject.
func (s *Store) SetManualMode(ctx context.Context, subjectID string, enabled bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE features SET manual_mode = $2, updated_at = now() WHERE feature_id = $1`,
		subjectID, enabled)
	if err != nil {
		return fmt.Errorf("set manual mode for %s: %w", subjectID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	tag, err = s.pool.Exec(ctx,
		`UPDATE bugs SET manual_mode = $2, updated_at = now() WHERE id = $1`,
		subjectID, enabled)
	if err != nil {
		return fmt.Errorf("set manual mode for %s: %w", subjectID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set manual mode for %s: %w", subjectID, domain.ErrNotFound)
	}
	return nil
}

// IsManualMode reports the kill switch state; unknown subjects are treated
// as automatic so the gate itself can report "not found".
func (s *Store) IsManualMode(ctx context.Context, subjectID string) (bool, error) {
	var enabled bool
	err := s.pool.QueryRow(ctx,
		`SELECT manual_mode FROM features WHERE feature_id = $1`, subjectID).Scan(&enabled)
	if err == nil {
		return enabled, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("manual mode for %s: %w", subjectID, err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT manual_mode FROM bugs WHERE id = $1`, subjectID).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("manual mode for %s: %w", subjectID, err)
	}
	return enabled, nil
}

// --- Scan helpers ---

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanRunState(row scannable) (*feature.RunState, error) {
	var (
		rs         feature.RunState
		scoresJSON []byte
		issuesJSON []byte
	)
	err := row.Scan(&rs.FeatureID, &rs.Name, &rs.Status, &rs.ManualMode,
		&scoresJSON, &issuesJSON, &rs.Version, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scoresJSON, &rs.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	if err := json.Unmarshal(issuesJSON, &rs.Issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return &rs, nil
}

func scanBug(row scannable) (*bug.Bug, error) {
	var (
		b        bug.Bug
		planJSON []byte
	)
	err := row.Scan(&b.ID, &b.Title, &b.Status, &b.ManualMode,
		&planJSON, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(planJSON) > 0 {
		b.Plan = &bug.FixPlan{}
		if err := json.Unmarshal(planJSON, b.Plan); err != nil {
			return nil, fmt.Errorf("decode fix plan: %w", err)
		}
	}
	return &b, nil
}
