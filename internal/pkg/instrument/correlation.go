package instrument

import (
	"context"
	"log/slog"
)

type (
	correlationIDKey struct{}
	logAttrsKey      struct{}
)

// SetCorrelationID stores the request correlation ID in ctx.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cID)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	cID, _ := ctx.Value(correlationIDKey{}).(string)
	return cID
}

// WithLogAttrs returns a copy of ctx carrying attrs. Every record logged with
// the returned context (or one derived from it) includes them.
func WithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	prev := logAttrs(ctx)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, logAttrsKey{}, merged)
}

func logAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(logAttrsKey{}).([]slog.Attr)
	return attrs
}

// DetachedContext returns a context that keeps the values of parent (the
// correlation ID and log attributes) but is not cancelled with it. It is used
// for work that must outlive the request which triggered it.
func DetachedContext(parent context.Context) context.Context {
	return context.WithoutCancel(parent)
}
