package brief

import (
	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
)

type Meta struct {
	Provider       string `json:"provider"`
	Mode           string `json:"mode"`
	ParseStrategy  string `json:"parse_strategy,omitempty"`
	IsFallback     bool   `json:"is_fallback"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	// Deduplicated is set for callers that shared another request's generation.
	Deduplicated         bool   `json:"deduplicated,omitempty"`
	PrimaryCorrelationID string `json:"primary_correlation_id,omitempty"`

	AuditID string `json:"audit_id,omitempty"`
}

// Response is what every successful or degraded generation returns.
// Data may be shared between deduplicated callers and must not be mutated.
type Response struct {
	OK            bool                    `json:"ok"`
	Data          *types.GenerationResult `json:"data"`
	Meta          Meta                    `json:"meta"`
	CorrelationID string                  `json:"correlation_id"`
}

// generation is the value shared by every waiter on one dedup key.
type generation struct {
	result         *types.GenerationResult
	provider       string
	parseStrategy  string
	isFallback     bool
	fallbackReason string
	correlationID  string
	auditID        string
}

func (g *generation) response(mode types.Mode, correlationID string, primary bool) *Response {
	resp := &Response{
		OK:   true,
		Data: g.result,
		Meta: Meta{
			Provider:       g.provider,
			Mode:           string(mode),
			ParseStrategy:  g.parseStrategy,
			IsFallback:     g.isFallback,
			FallbackReason: g.fallbackReason,
			AuditID:        g.auditID,
		},
		CorrelationID: correlationID,
	}
	if !primary {
		resp.Meta.Deduplicated = true
		resp.Meta.PrimaryCorrelationID = g.correlationID
	}
	return resp
}

func (m Meta) outcome() string {
	switch {
	case m.IsFallback:
		return m.FallbackReason
	case m.Deduplicated:
		return "shared"
	default:
		return "ok"
	}
}
