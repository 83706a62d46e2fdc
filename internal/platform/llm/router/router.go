// Package router builds the configured llm.Provider.
package router

import (
	"fmt"
	"strings"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm/mock"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm/oaihttp"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm/openaisdk"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

// New returns the provider for cfg.Type wrapped with the configured rate
// limit. A nil provider with a nil error means generation is disabled.
func New(cfg llm.Config, log *logger.Logger) (llm.Provider, error) {
	if log == nil {
		log = logger.NewNop()
	}
	var p llm.Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "none", "disabled":
		log.Warn("no model provider configured; full generation will fail")
		return nil, nil
	case "mock":
		p = mock.New()
	case "oai_http", "openai_http":
		c, err := oaihttp.New(cfg)
		if err != nil {
			return nil, err
		}
		p = c
	case "openai", "openai_sdk":
		c, err := openaisdk.New(cfg)
		if err != nil {
			return nil, err
		}
		p = c
	default:
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Type)
	}
	log.Info("model provider ready", "provider", p.Name(), "model", cfg.Model, "rate_limit_rps", cfg.RateLimitRPS)
	return llm.WithRateLimit(p, cfg.RateLimitRPS, cfg.RateLimitBurst), nil
}
