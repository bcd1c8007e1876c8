package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type metrics struct {
	submissions   metric.Int64Counter
	verifications metric.Int64Counter
	resends       metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	return &metrics{
		submissions:   newCounter(meter, "authflow.submissions", "Credential form submissions by mode and outcome"),
		verifications: newCounter(meter, "authflow.otp.verifications", "Verification code checks by outcome"),
		resends:       newCounter(meter, "authflow.otp.resends", "Verification code resends by outcome"),
	}
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	if meter == nil {
		return noop.Int64Counter{}
	}

	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}

	return c
}

func (m *metrics) submission(ctx context.Context, mode entity.AuthMode, out entity.Outcome) {
	if m == nil {
		return
	}

	m.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("outcome", out.String()),
	))
}

func (m *metrics) verification(ctx context.Context, out entity.Outcome) {
	if m == nil {
		return
	}

	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", out.String())))
}

func (m *metrics) resend(ctx context.Context, out entity.Outcome) {
	if m == nil {
		return
	}

	m.resends.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", out.String())))
}
