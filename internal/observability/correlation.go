package observability

import (
	"context"
	"strings"
)

// CorrelationKey is the context key under which the per-request correlation
// identifier travels. It is a plain string so the value survives the hop from
// the fasthttp request context into derived contexts.
const CorrelationKey = "correlation_id"

// ContextWithCorrelation attaches the correlation identifier to the context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, CorrelationKey, correlationID) //nolint:staticcheck
}

// CorrelationFromContext extracts the correlation identifier, if present.
func CorrelationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationKey).(string); ok { //nolint:staticcheck
		return id
	}
	return ""
}
