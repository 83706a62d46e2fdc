// Package ctxutil carries per-request identifiers through a context.
package ctxutil

import (
	"context"
	"strings"
)

type traceDataKey struct{}

// TraceData is attached once per inbound request. CorrelationID ties a
// request to its audit record and to any request it was deduplicated with.
type TraceData struct {
	TraceID       string
	RequestID     string
	CorrelationID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

func (td *TraceData) correlation() string {
	if td == nil {
		return ""
	}
	return strings.TrimSpace(td.CorrelationID)
}

func (td *TraceData) trace() string {
	if td == nil {
		return ""
	}
	return td.TraceID
}

// CorrelationID returns the correlation id carried by ctx, or "".
func CorrelationID(ctx context.Context) string { return GetTraceData(ctx).correlation() }

// TraceID returns the otel trace id carried by ctx, or "".
func TraceID(ctx context.Context) string { return GetTraceData(ctx).trace() }
