package brief

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/extract"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/readjust"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/ctxutil"
	"github.com/yungbote/hookbrief-backend/internal/platform/dedup"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

// ProviderReadjust names the model-free partial regeneration path in response meta.
const ProviderReadjust = "readjust"

var (
	errNoProvider    = errors.New("no generation provider configured")
	errExtractFailed = errors.New("model output could not be parsed as a brief")
)

// Generate runs one brief request. Full mode shares one model call between
// concurrent requests for the same subject; model and parse failures come back
// as degraded results with Meta.IsFallback set. Only validation, a missing
// subject, a missing provider and dedup conflicts are returned as errors.
func (u Usecases) Generate(ctx context.Context, req types.GenerationRequest) (*Response, error) {
	if req.Mode == "" {
		req.Mode = types.ModeFull
	}
	correlationID := resolveCorrelationID(ctx, req.CorrelationID)

	ctx, span := u.deps.Tracer.Start(ctx, "brief.generate", trace.WithAttributes(
		attribute.String("brief.subject_id", req.SubjectID),
		attribute.String("brief.mode", string(req.Mode)),
		attribute.String("brief.correlation_id", correlationID),
	))
	defer span.End()

	log := u.deps.Log.With("correlation_id", correlationID, "subject_id", req.SubjectID, "mode", string(req.Mode))

	start := time.Now()
	resp, err := u.generate(ctx, req, correlationID, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apierr.KindOf(err)))
		log.Warn("brief generation failed", "kind", apierr.KindOf(err), "error", err)
		u.deps.Metrics.ObserveGeneration(string(req.Mode), string(apierr.KindOf(err)), time.Since(start))
		return nil, err
	}
	u.deps.Metrics.ObserveGeneration(string(req.Mode), resp.Meta.outcome(), time.Since(start))
	span.SetAttributes(
		attribute.Bool("brief.is_fallback", resp.Meta.IsFallback),
		attribute.Bool("brief.deduplicated", resp.Meta.Deduplicated),
		attribute.String("brief.parse_strategy", resp.Meta.ParseStrategy),
	)
	return resp, nil
}

func (u Usecases) generate(ctx context.Context, req types.GenerationRequest, correlationID string, log *logger.Logger) (*Response, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if req.Mode == types.ModePartial {
		return u.partial(ctx, req, correlationID)
	}
	if u.deps.Provider == nil {
		return nil, apierr.ProviderUnavailable(errNoProvider)
	}

	product, err := u.product(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	key := dedup.Key(dedupNamespace, req.SubjectID)
	v, primary, err := u.deps.Dedup.Do(ctx, key, shapeOf(req), func(wctx context.Context) (any, error) {
		return u.runFull(wctx, req, product, correlationID, log), nil
	})
	if errors.Is(err, dedup.ErrWorkTimeout) {
		log.Warn("brief generation timed out, degrading", "reason", ReasonWorkTimeout)
		g := u.degraded(product, req, types.SignalSnapshot{}, u.deps.Now().UTC(), ReasonWorkTimeout, correlationID)
		// The abandoned work no longer audits, so the primary records this one.
		if primary {
			g.auditID = u.audit(context.WithoutCancel(ctx), req, g, log)
		}
		return g.response(req.Mode, correlationID, true), nil
	}
	if err != nil {
		return nil, err
	}
	g, ok := v.(*generation)
	if !ok || g == nil {
		return nil, errors.New("brief: unexpected shared result")
	}
	if !primary {
		log.Info("brief generation shared", "primary_correlation_id", g.correlationID)
	}
	return g.response(req.Mode, correlationID, primary), nil
}

func (u Usecases) partial(ctx context.Context, req types.GenerationRequest, correlationID string) (*Response, error) {
	if _, err := u.product(ctx, req.SubjectID); err != nil {
		return nil, err
	}
	_, span := u.deps.Tracer.Start(ctx, "brief.readjust")
	res, err := readjust.Readjust(req.PreviousResult, req.LockedFields, req.EditedValues)
	span.End()
	if err != nil {
		return nil, err
	}
	return &Response{
		OK:   true,
		Data: res,
		Meta: Meta{
			Provider:      ProviderReadjust,
			Mode:          string(types.ModePartial),
			ParseStrategy: res.ParseStrategy,
		},
		CorrelationID: correlationID,
	}, nil
}

func (u Usecases) product(ctx context.Context, subjectID string) (*catalog.Product, error) {
	ctx, span := u.deps.Tracer.Start(ctx, "brief.fetch_context")
	defer span.End()
	if u.deps.Context == nil {
		return nil, errors.New("brief: context provider not configured")
	}
	return u.deps.Context.Product(ctx, strings.TrimSpace(subjectID))
}

// runFull is the shared work item. It never fails: every model or parse
// problem turns into a degraded generation.
func (u Usecases) runFull(ctx context.Context, req types.GenerationRequest, product *catalog.Product, correlationID string, log *logger.Logger) *generation {
	now := u.deps.Now().UTC()
	snap := u.snapshot(ctx, req.SubjectID, product, log)
	msgs := BuildMessages(NewPromptInput(product, req, snap))

	raw, err := u.invoke(ctx, msgs)
	if err != nil {
		reason, code := ReasonProviderError, "provider_error"
		if llm.IsTimeout(err) {
			reason, code = ReasonProviderTimeout, "provider_timeout"
		}
		log.Warn("provider call failed, degrading", "reason", reason, "error", apierr.ProviderError(code, err))
		g := u.degraded(product, req, snap, now, reason, correlationID)
		g.auditID = u.audit(ctx, req, g, log)
		return g
	}

	ex := u.extract(ctx, raw)
	if !ex.Success {
		log.Warn("extraction failed, degrading",
			"reason", ReasonParseFailure,
			"last_strategy", ex.Strategy,
			"excerpt", ex.Excerpt,
			"error", apierr.ParseFailure(errExtractFailed),
		)
		g := u.degraded(product, req, snap, now, ReasonParseFailure, correlationID)
		g.auditID = u.audit(ctx, req, g, log)
		return g
	}

	d := Decode(ex.JSON)
	if len(d.SpokenHooks) == 0 {
		log.Warn("model returned no spoken hooks, degrading", "reason", ReasonEmptyCandidates, "strategy", ex.Strategy)
		g := u.degraded(product, req, snap, now, ReasonEmptyCandidates, correlationID)
		g.auditID = u.audit(ctx, req, g, log)
		return g
	}

	_, span := u.deps.Tracer.Start(ctx, "brief.score")
	res := u.assemble(d, snap, now, req.Tuning, product.Name)
	span.SetAttributes(attribute.Int("brief.spoken_candidates", len(d.SpokenHooks)))
	span.End()

	res.ParseStrategy = ex.Strategy
	res.Provider = u.deps.Provider.Name()
	g := &generation{
		result:        res,
		provider:      res.Provider,
		parseStrategy: ex.Strategy,
		correlationID: correlationID,
	}
	g.auditID = u.audit(ctx, req, g, log)
	log.Info("brief generated", "strategy", ex.Strategy, "selected_family", res.HookFamily, "audit_id", g.auditID)
	return g
}

func (u Usecases) degraded(product *catalog.Product, req types.GenerationRequest, snap types.SignalSnapshot, now time.Time, reason, correlationID string) *generation {
	name := ""
	if product != nil {
		name = product.Name
	}
	res := u.fallback(name, req.Tuning, snap, now)
	res.Provider = u.ProviderName()
	return &generation{
		result:         res,
		provider:       res.Provider,
		parseStrategy:  StrategyFallback,
		isFallback:     true,
		fallbackReason: reason,
		correlationID:  correlationID,
	}
}

// snapshot reads history concurrently. Each read degrades to empty on failure.
func (u Usecases) snapshot(ctx context.Context, subjectID string, product *catalog.Product, log *logger.Logger) types.SignalSnapshot {
	ctx, span := u.deps.Tracer.Start(ctx, "brief.fetch_history")
	defer span.End()

	snap := types.SignalSnapshot{Signals: map[string]types.HistoricalSignal{}}
	if product != nil {
		snap.SubjectTerms = taxonomy.Tokens(product.Name)
	}
	var (
		signals   []types.HistoricalSignal
		exemplars []string
		recent    []string
	)
	g, gctx := errgroup.WithContext(ctx)
	if u.deps.Signals != nil {
		g.Go(func() error {
			out, err := u.deps.Signals.Signals(gctx, subjectID)
			if err != nil {
				log.Warn("signal read failed, scoring without history", "error", err)
				return nil
			}
			signals = out
			return nil
		})
		g.Go(func() error {
			category := ""
			if product != nil {
				category = product.Category
			}
			out, err := u.deps.Signals.Exemplars(gctx, category)
			if err != nil {
				log.Warn("exemplar read failed", "error", err)
				return nil
			}
			exemplars = out
			return nil
		})
	}
	if u.deps.Audits != nil {
		g.Go(func() error {
			out, err := u.deps.Audits.RecentHooks(gctx, subjectID, u.deps.Config.RecentHooksLimit)
			if err != nil {
				log.Warn("recent hooks read failed", "error", err)
				return nil
			}
			recent = out
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range signals {
		key := s.Key
		if key == "" {
			key = taxonomy.NormalizeKey(s.Text)
		}
		snap.Signals[key] = s
	}
	snap.Exemplars = exemplars
	snap.RecentHooks = recent
	span.SetAttributes(
		attribute.Int("brief.signals", len(snap.Signals)),
		attribute.Int("brief.exemplars", len(exemplars)),
		attribute.Int("brief.recent_hooks", len(recent)),
	)
	return snap
}

func (u Usecases) invoke(ctx context.Context, msgs []llm.Message) (string, error) {
	provider := u.deps.Provider
	cctx, cancel := context.WithTimeout(ctx, u.deps.Config.ProviderTimeout)
	defer cancel()
	cctx, span := u.deps.Tracer.Start(cctx, "brief.invoke", trace.WithAttributes(attribute.String("llm.provider", provider.Name())))
	defer span.End()

	start := time.Now()
	raw, err := provider.Generate(cctx, llm.Request{
		Messages:    msgs,
		Temperature: u.deps.Config.Temperature,
		MaxTokens:   u.deps.Config.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		err = llm.Wrap(provider.Name(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		status := "error"
		if llm.IsTimeout(err) {
			status = "timeout"
		}
		u.deps.Metrics.ObserveProviderCall(provider.Name(), status, time.Since(start))
		return "", err
	}
	u.deps.Metrics.ObserveProviderCall(provider.Name(), "ok", time.Since(start))
	span.SetAttributes(attribute.Int("llm.response_bytes", len(raw)))
	return raw, nil
}

func (u Usecases) extract(ctx context.Context, raw string) extract.Result {
	_, span := u.deps.Tracer.Start(ctx, "brief.extract")
	defer span.End()
	res := u.deps.Extractor.Extract(raw)
	span.SetAttributes(
		attribute.Bool("extract.success", res.Success),
		attribute.String("extract.strategy", res.Strategy),
		attribute.Int("extract.attempts", len(res.Attempts)),
	)
	return res
}

type auditInput struct {
	SubjectID string       `json:"subject_id"`
	Mode      types.Mode   `json:"mode"`
	Tuning    types.Tuning `json:"tuning"`
	Reference string       `json:"reference,omitempty"`
	Nonce     string       `json:"nonce,omitempty"`
}

// audit writes the record on a bounded context. Failures are logged only.
func (u Usecases) audit(ctx context.Context, req types.GenerationRequest, g *generation, log *logger.Logger) string {
	if u.deps.Audits == nil || g == nil || g.result == nil {
		return ""
	}
	if ctx.Err() != nil {
		log.Warn("generation abandoned, audit skipped", "error", ctx.Err())
		return ""
	}
	actx, cancel := context.WithTimeout(ctx, u.deps.Config.AuditTimeout)
	defer cancel()
	actx, span := u.deps.Tracer.Start(actx, "brief.audit")
	defer span.End()

	input, _ := json.Marshal(auditInput{
		SubjectID: req.SubjectID,
		Mode:      req.Mode,
		Tuning:    req.Tuning,
		Reference: extract.Excerpt(req.Reference, 2048),
		Nonce:     req.Nonce,
	})
	result, err := json.Marshal(g.result)
	if err != nil {
		log.Error("audit encode failed", "error", err)
		return ""
	}
	rec := &types.AuditRecord{
		ID:                 uuid.New(),
		SubjectID:          req.SubjectID,
		CorrelationID:      g.correlationID,
		Mode:               string(req.Mode),
		Input:              datatypes.JSON(input),
		Result:             datatypes.JSON(result),
		Provider:           g.provider,
		ParseStrategy:      g.parseStrategy,
		IsFallback:         g.isFallback,
		FallbackReason:     g.fallbackReason,
		SelectedSpokenHook: g.result.SelectedSpokenHook,
	}
	if n := strings.TrimSpace(req.Nonce); n != "" {
		rec.Nonce = &n
	}

	created, err := u.deps.Audits.Record(actx, rec)
	if err != nil {
		span.RecordError(err)
		log.Error("audit write failed", "error", err)
		return ""
	}
	if !created {
		log.Info("audit already recorded for nonce", "nonce", req.Nonce)
		return ""
	}
	return rec.ID.String()
}

// shapeOf fingerprints the parts of a request that change the generated brief.
// The nonce is deliberately excluded.
func shapeOf(req types.GenerationRequest) string {
	families := make([]string, 0, len(req.Tuning.HookFamilies))
	for _, f := range req.Tuning.HookFamilies {
		families = append(families, taxonomy.CanonicalFamily(f))
	}
	b, _ := json.Marshal(struct {
		Mode         types.Mode `json:"mode"`
		Tone         string     `json:"tone"`
		TargetLength string     `json:"target_length"`
		ContentType  string     `json:"content_type"`
		Families     []string   `json:"families"`
		Reference    string     `json:"reference"`
	}{req.Mode, strings.TrimSpace(req.Tuning.Tone), strings.TrimSpace(req.Tuning.TargetLength), strings.TrimSpace(req.Tuning.ContentType), families, strings.TrimSpace(req.Reference)})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

func resolveCorrelationID(ctx context.Context, supplied string) string {
	if id := strings.TrimSpace(supplied); id != "" {
		return id
	}
	if id := ctxutil.CorrelationID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
