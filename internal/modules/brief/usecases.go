// Package brief orchestrates creative brief generation: context fetch, model
// call, extraction, scoring, diversity selection and audit, plus the
// model-free partial regeneration path.
package brief

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hookbrief-backend/internal/modules/brief/extract"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/scoring"
	"github.com/yungbote/hookbrief-backend/internal/platform/dedup"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

const dedupNamespace = "ai-brief"

type Config struct {
	// ProviderTimeout bounds one model call. Expiry degrades with reason provider_timeout.
	ProviderTimeout time.Duration
	// AuditTimeout bounds the best-effort audit write.
	AuditTimeout time.Duration

	MaxSpokenHooks int
	MaxOptions     int

	RecentHooksLimit int
	ExemplarLimit    int
	SignalLimit      int

	Temperature float64
	MaxTokens   int

	// IncludeDiagnostics attaches the scored rankings to every result.
	IncludeDiagnostics bool
}

func DefaultConfig() Config {
	return Config{
		ProviderTimeout:    45 * time.Second,
		AuditTimeout:       3 * time.Second,
		MaxSpokenHooks:     5,
		MaxOptions:         4,
		RecentHooksLimit:   10,
		ExemplarLimit:      20,
		SignalLimit:        500,
		Temperature:        0.8,
		MaxTokens:          1800,
		IncludeDiagnostics: true,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = d.ProviderTimeout
	}
	if c.AuditTimeout <= 0 {
		c.AuditTimeout = d.AuditTimeout
	}
	if c.MaxSpokenHooks <= 0 {
		c.MaxSpokenHooks = d.MaxSpokenHooks
	}
	if c.MaxOptions <= 0 {
		c.MaxOptions = d.MaxOptions
	}
	if c.RecentHooksLimit <= 0 {
		c.RecentHooksLimit = d.RecentHooksLimit
	}
	if c.ExemplarLimit <= 0 {
		c.ExemplarLimit = d.ExemplarLimit
	}
	if c.SignalLimit <= 0 {
		c.SignalLimit = d.SignalLimit
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	return c
}

type UsecasesDeps struct {
	Log *logger.Logger

	// Provider may be nil; full generation then fails with PROVIDER_UNAVAILABLE.
	Provider llm.Provider

	Context ContextProvider
	Signals SignalStore
	Audits  AuditSink

	Dedup     *dedup.Group
	Extractor *extract.Extractor
	Scorer    *scoring.Scorer

	Config Config
	// Now defaults to time.Now. It is read once per generation pass.
	Now func() time.Time
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
	// Metrics may be nil.
	Metrics Observer
}

// Observer receives per-request counters. *observability.Metrics satisfies it.
type Observer interface {
	ObserveGeneration(mode, outcome string, dur time.Duration)
	ObserveProviderCall(provider, status string, dur time.Duration)
	ObserveFeedback(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(string, string, time.Duration)   {}
func (nopObserver) ObserveProviderCall(string, string, time.Duration) {}
func (nopObserver) ObserveFeedback(string)                            {}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("module", "Brief")
	if deps.Dedup == nil {
		deps.Dedup = dedup.New(dedup.DefaultConfig(), deps.Log)
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New(extract.DefaultConfig(), deps.Log)
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.NewDefault()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("hookbrief/brief")
	}
	if deps.Metrics == nil {
		deps.Metrics = nopObserver{}
	}
	deps.Config = deps.Config.normalized()
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

// ProviderName reports the configured provider, or "" when generation is disabled.
func (u Usecases) ProviderName() string {
	if u.deps.Provider == nil {
		return ""
	}
	return u.deps.Provider.Name()
}
