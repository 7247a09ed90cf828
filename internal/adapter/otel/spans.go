package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "verdict"

// StartGateSpan starts a span for one gate evaluation.
func StartGateSpan(ctx context.Context, kind, subjectID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "gate.evaluate",
		trace.WithAttributes(
			attribute.String("gate.kind", kind),
			attribute.String("gate.subject_id", subjectID),
		),
	)
}

// StartConsensusSpan starts a span for one debate round evaluation.
func StartConsensusSpan(ctx context.Context, round, panels int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "consensus.evaluate",
		trace.WithAttributes(
			attribute.Int("consensus.round", round),
			attribute.Int("consensus.panels", panels),
		),
	)
}
