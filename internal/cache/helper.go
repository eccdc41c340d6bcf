package cache

import (
	"context"
	"encoding/json"

	"github.com/getsentry/sentry-go"
)

// Fetch reads key and returns it as T. It accepts both a stored T (in-memory
// cache) and its JSON encoding (Redis).
func Fetch[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}

	switch val := v.(type) {
	case T:
		return val, true
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(val, &out); err != nil {
			return zero, false
		}
		return out, true
	default:
		return zero, false
	}
}

// StartCacheSpan creates a new span for a cache operation
// Returns nil if Sentry is not available in the context
func StartCacheSpan(ctx context.Context, cache, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache."+cache+"."+operation)
	span.Description = "cache." + cache + "." + operation
	span.Op = "db.cache"
	span.SetData("cache", cache)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

// SetSpanError marks a span as failed and adds error information
func SetSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}

// SetSpanSuccess marks a span as successful
func SetSpanSuccess(span *sentry.Span) {
	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
}
