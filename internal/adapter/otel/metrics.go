package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "verdict"

// Metrics holds all Verdict metric instruments.
type Metrics struct {
	DecisionsApproved metric.Int64Counter
	DecisionsDenied   metric.Int64Counter
	RoundsEvaluated   metric.Int64Counter
	VotesAggregated   metric.Int64Counter
	Vetoes            metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.DecisionsApproved, err = meter.Int64Counter("verdict.decisions.approved",
		metric.WithDescription("Number of gate decisions that auto-approved"))
	if err != nil {
		return nil, err
	}

	m.DecisionsDenied, err = meter.Int64Counter("verdict.decisions.denied",
		metric.WithDescription("Number of gate decisions that denied"))
	if err != nil {
		return nil, err
	}

	m.RoundsEvaluated, err = meter.Int64Counter("verdict.consensus.rounds",
		metric.WithDescription("Number of debate rounds evaluated for consensus"))
	if err != nil {
		return nil, err
	}

	m.VotesAggregated, err = meter.Int64Counter("verdict.consensus.votes",
		metric.WithDescription("Number of weighted vote aggregations"))
	if err != nil {
		return nil, err
	}

	m.Vetoes, err = meter.Int64Counter("verdict.overrides.vetoes",
		metric.WithDescription("Number of human vetoes applied"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// CountDecision records one gate decision for the given kind.
func (m *Metrics) CountDecision(ctx context.Context, kind string, approved bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("gate.kind", kind))
	if approved {
		m.DecisionsApproved.Add(ctx, 1, attrs)
	} else {
		m.DecisionsDenied.Add(ctx, 1, attrs)
	}
}

// CountRound records one consensus round evaluation.
func (m *Metrics) CountRound(ctx context.Context, reached, forced bool) {
	if m == nil {
		return
	}
	m.RoundsEvaluated.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("consensus.reached", reached),
		attribute.Bool("consensus.forced", forced),
	))
}

// CountVote records one weighted vote aggregation.
func (m *Metrics) CountVote(ctx context.Context) {
	if m == nil {
		return
	}
	m.VotesAggregated.Add(ctx, 1)
}

// CountVeto records one human veto.
func (m *Metrics) CountVeto(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Vetoes.Add(ctx, 1, metric.WithAttributes(attribute.String("gate.kind", kind)))
}
