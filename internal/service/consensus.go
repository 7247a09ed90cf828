package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/quorumforge/verdict/internal/adapter/otel"
	"github.com/quorumforge/verdict/internal/adapter/ws"
	"github.com/quorumforge/verdict/internal/config"
	"github.com/quorumforge/verdict/internal/domain/consensus"
	"github.com/quorumforge/verdict/internal/domain/vote"
	"github.com/quorumforge/verdict/internal/port/messagequeue"
)

// ConsensusService evaluates debate rounds and fuses panel votes. The
// computations are pure; the service layers event publishing, dashboard
// broadcasts, and metrics on top.
type ConsensusService struct {
	cfg     consensus.Config
	topN    int
	queue   messagequeue.Queue
	hub     *ws.Hub
	metrics *otel.Metrics
}

// NewConsensusService creates a ConsensusService with the configured thresholds.
func NewConsensusService(cc config.Consensus, vc config.Vote) *ConsensusService {
	return &ConsensusService{
		cfg: consensus.Config{
			MaxRounds:  cc.MaxRounds,
			MinOverlap: cc.MinOverlap,
			MaxStdDev:  cc.MaxStdDev,
		},
		topN: vc.TopN,
	}
}

// SetQueue enables consensus event publishing.
func (s *ConsensusService) SetQueue(q messagequeue.Queue) { s.queue = q }

// SetHub enables dashboard broadcasts.
func (s *ConsensusService) SetHub(hub *ws.Hub) { s.hub = hub }

// SetMetrics enables round and vote counters.
func (s *ConsensusService) SetMetrics(m *otel.Metrics) { s.metrics = m }

// EvaluateRound measures agreement across the panel rankings for one round.
func (s *ConsensusService) EvaluateRound(ctx context.Context, rankings [][]string, round int) consensus.Result {
	ctx, span := otel.StartConsensusSpan(ctx, round, len(rankings))
	defer span.End()

	res := consensus.Evaluate(rankings, round, s.cfg)

	s.metrics.CountRound(ctx, res.Reached, res.Forced)
	s.publish(ctx, messagequeue.SubjectConsensusEvaluated, messagequeue.ConsensusEvaluatedPayload{
		Round:            round,
		PanelCount:       len(rankings),
		Reached:          res.Reached,
		Forced:           res.Forced,
		OverlapCount:     res.OverlapCount,
		CommonPriorities: res.CommonPriorities,
	})
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventConsensus, ws.ConsensusEvent{
			Round:            round,
			PanelCount:       len(rankings),
			Reached:          res.Reached,
			Forced:           res.Forced,
			OverlapCount:     res.OverlapCount,
			CommonPriorities: res.CommonPriorities,
		})
	}
	return res
}

// AggregateVotes fuses the panel rankings into one weighted priority list.
// topN <= 0 falls back to the configured default.
func (s *ConsensusService) AggregateVotes(ctx context.Context, rankingsByPanel map[string][]string, weights map[string]float64, topN int) []string {
	if topN <= 0 {
		topN = s.topN
	}
	priorities := vote.Aggregate(rankingsByPanel, weights, topN)

	s.metrics.CountVote(ctx)
	s.publish(ctx, messagequeue.SubjectVoteAggregated, messagequeue.VoteAggregatedPayload{
		PanelCount: len(rankingsByPanel),
		Priorities: priorities,
	})
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventVote, ws.VoteEvent{
			PanelCount: len(rankingsByPanel),
			Priorities: priorities,
		})
	}
	return priorities
}

// publish sends an event best-effort; the computation result is already
// final, so delivery failures are logged, not returned.
func (s *ConsensusService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err == nil {
		err = s.queue.Publish(ctx, subject, data)
	}
	if err != nil {
		slog.WarnContext(ctx, "publish consensus event", "subject", subject, "error", err)
	}
}
