package brief

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/extract"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/selection"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/dedup"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

func TestGenerateFullBrief(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	req := h.request()
	req.Nonce = "click-1"
	req.CorrelationID = "corr-1"

	resp, err := h.u.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !resp.OK || resp.Meta.IsFallback {
		t.Fatalf("expected success, meta=%+v", resp.Meta)
	}
	if resp.CorrelationID != "corr-1" {
		t.Fatalf("correlation id=%q", resp.CorrelationID)
	}
	if resp.Meta.ParseStrategy != extract.StrategyJSONCodeBlock || resp.Data.ParseStrategy != extract.StrategyJSONCodeBlock {
		t.Fatalf("strategy=%q", resp.Meta.ParseStrategy)
	}
	if resp.Meta.Provider != "fake" || resp.Meta.Mode != "full" {
		t.Fatalf("meta=%+v", resp.Meta)
	}
	assertConsistent(t, resp.Data)

	if n := len(resp.Data.SpokenHookOptions); n != 5 {
		t.Fatalf("expected 5 spoken hooks, got %d", n)
	}
	if got := selection.DistinctFamilies(resp.Data.Diagnostics.SpokenHooks); got != 5 {
		t.Fatalf("expected 5 families, got %d", got)
	}
	// All mock hooks score equally, so the tie breaks on normalized text.
	if resp.Data.SelectedSpokenHook != "Everyone keeps asking what Glow Serum is" {
		t.Fatalf("selected=%q", resp.Data.SelectedSpokenHook)
	}
	if resp.Data.EmotionalDriver != "curiosity" {
		t.Fatalf("driver=%q", resp.Data.EmotionalDriver)
	}

	recs := h.audits.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Nonce == nil || *rec.Nonce != "click-1" || rec.CorrelationID != "corr-1" || rec.IsFallback {
		t.Fatalf("audit record=%+v", rec)
	}
	if rec.SelectedSpokenHook != resp.Data.SelectedSpokenHook {
		t.Fatalf("audit hook=%q", rec.SelectedSpokenHook)
	}
	if resp.Meta.AuditID != rec.ID.String() {
		t.Fatalf("audit id=%q want %q", resp.Meta.AuditID, rec.ID)
	}
}

func TestConcurrentRequestsShareOneModelCall(t *testing.T) {
	provider := &fakeProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHarness(t, provider, nil)

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		resps []*Response
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := h.request()
			req.Nonce = "nonce-" + string(rune('a'+i))
			resp, err := h.u.Generate(context.Background(), req)
			if err != nil {
				t.Errorf("Generate: %v", err)
				return
			}
			mu.Lock()
			resps = append(resps, resp)
			mu.Unlock()
		}(i)
	}

	key := dedup.Key(dedupNamespace, h.product.ID.String())
	deadline := time.Now().Add(2 * time.Second)
	for h.u.deps.Dedup.Waiters(key) != n {
		if time.Now().After(deadline) {
			t.Fatalf("callers did not attach, waiters=%d", h.u.deps.Dedup.Waiters(key))
		}
		time.Sleep(time.Millisecond)
	}
	close(provider.release)
	wg.Wait()

	if provider.Calls() != 1 {
		t.Fatalf("provider called %d times", provider.Calls())
	}
	if len(resps) != n {
		t.Fatalf("got %d responses", len(resps))
	}
	primaries := 0
	var primaryCorr string
	for _, r := range resps {
		if r.Data != resps[0].Data {
			t.Fatalf("callers received different results")
		}
		if !r.Meta.Deduplicated {
			primaries++
			primaryCorr = r.CorrelationID
		}
	}
	if primaries != 1 {
		t.Fatalf("primaries=%d", primaries)
	}
	for _, r := range resps {
		if r.Meta.Deduplicated && r.Meta.PrimaryCorrelationID != primaryCorr {
			t.Fatalf("follower primary_correlation_id=%q want %q", r.Meta.PrimaryCorrelationID, primaryCorr)
		}
		if r.Meta.Deduplicated && r.CorrelationID == primaryCorr {
			t.Fatalf("follower reused the primary correlation id")
		}
	}
	if got := len(h.audits.Records()); got != 1 {
		t.Fatalf("expected one audit record for the shared generation, got %d", got)
	}
	if h.u.deps.Dedup.InFlight() != 0 {
		t.Fatalf("dedup key not released")
	}
}

func TestConflictingShapeWhileInFlight(t *testing.T) {
	provider := &fakeProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHarness(t, provider, nil)

	done := make(chan error, 1)
	go func() {
		_, err := h.u.Generate(context.Background(), h.request())
		done <- err
	}()
	<-provider.started

	req := h.request()
	req.Tuning.Tone = "sarcastic"
	_, err := h.u.Generate(context.Background(), req)
	if !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	close(provider.release)
	if err := <-done; err != nil {
		t.Fatalf("primary: %v", err)
	}
}

func TestDegradedResults(t *testing.T) {
	cases := []struct {
		name     string
		provider *fakeProvider
		timeout  time.Duration
		reason   string
	}{
		{
			name: "provider error",
			provider: &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
				return "", &llm.Error{Provider: "fake", Status: 500, Err: errors.New("upstream exploded")}
			}},
			reason: ReasonProviderError,
		},
		{
			name: "provider timeout",
			provider: &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}},
			timeout: 20 * time.Millisecond,
			reason:  ReasonProviderTimeout,
		},
		{
			name: "parse failure",
			provider: &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
				return "Sorry, I cannot help with that today.", nil
			}},
			reason: ReasonParseFailure,
		},
		{
			name: "no spoken hooks",
			provider: &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
				return `{"spoken_hook_options": [], "cta_options": ["Buy now"]}`, nil
			}},
			reason: ReasonEmptyCandidates,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.provider, func(d *UsecasesDeps) {
				if tc.timeout > 0 {
					d.Config.ProviderTimeout = tc.timeout
				}
			})
			resp, err := h.u.Generate(context.Background(), h.request())
			if err != nil {
				t.Fatalf("degraded path returned error: %v", err)
			}
			if !resp.OK || !resp.Meta.IsFallback || resp.Meta.FallbackReason != tc.reason {
				t.Fatalf("meta=%+v", resp.Meta)
			}
			if resp.Meta.ParseStrategy != StrategyFallback {
				t.Fatalf("strategy=%q", resp.Meta.ParseStrategy)
			}
			assertConsistent(t, resp.Data)
			if got := len(resp.Data.SpokenHookOptions); got != 5 {
				t.Fatalf("fallback spoken hooks=%d", got)
			}
			recs := h.audits.Records()
			if len(recs) != 1 || !recs[0].IsFallback || recs[0].FallbackReason != tc.reason {
				t.Fatalf("audit=%+v", recs)
			}
		})
	}
}

func TestWorkTimeoutIsAudited(t *testing.T) {
	block := make(chan struct{})
	provider := &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
		<-block
		return "", errors.New("late reply")
	}}
	h := newHarness(t, provider, func(d *UsecasesDeps) {
		d.Config.ProviderTimeout = time.Minute
		d.Dedup = dedup.New(dedup.Config{WorkTimeout: 30 * time.Millisecond, MaxWaiters: 4}, nil)
	})

	resp, err := h.u.Generate(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !resp.Meta.IsFallback || resp.Meta.FallbackReason != ReasonWorkTimeout {
		t.Fatalf("meta=%+v", resp.Meta)
	}
	assertConsistent(t, resp.Data)

	recs := h.audits.Records()
	if len(recs) != 1 || recs[0].FallbackReason != ReasonWorkTimeout || recs[0].ID.String() != resp.Meta.AuditID {
		t.Fatalf("audit=%+v meta=%+v", recs, resp.Meta)
	}

	// The abandoned execution finishes later and must not add a second record.
	close(block)
	time.Sleep(50 * time.Millisecond)
	if got := len(h.audits.Records()); got != 1 {
		t.Fatalf("audit records=%d", got)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	a := h.u.fallback("Glow Serum", types.Tuning{}, types.SignalSnapshot{}, testNow)
	b := h.u.fallback("Glow Serum", types.Tuning{}, types.SignalSnapshot{}, testNow)
	if a.SelectedSpokenHook != b.SelectedSpokenHook || len(a.SpokenHookOptions) != len(b.SpokenHookOptions) {
		t.Fatalf("fallback differs: %q vs %q", a.SelectedSpokenHook, b.SelectedSpokenHook)
	}
	for i := range a.SpokenHookOptions {
		if a.SpokenHookOptions[i] != b.SpokenHookOptions[i] {
			t.Fatalf("option %d differs", i)
		}
	}
}

func TestNoProviderIsUnavailable(t *testing.T) {
	h := newHarness(t, nil, nil)
	_, err := h.u.Generate(context.Background(), h.request())
	if !apierr.Is(err, apierr.KindProviderUnavailable) {
		t.Fatalf("expected PROVIDER_UNAVAILABLE, got %v", err)
	}
	if len(h.audits.Records()) != 0 {
		t.Fatalf("no audit expected")
	}
}

func TestValidationHappensBeforeSideEffects(t *testing.T) {
	provider := &fakeProvider{}
	h := newHarness(t, provider, nil)

	bad := []types.GenerationRequest{
		{SubjectID: "  "},
		{SubjectID: h.product.ID.String(), Mode: "sideways"},
		{SubjectID: h.product.ID.String(), Mode: types.ModePartial},
		{SubjectID: h.product.ID.String(), Tuning: types.Tuning{HookFamilies: []string{"astrology"}}},
	}
	for i, req := range bad {
		_, err := h.u.Generate(context.Background(), req)
		if !apierr.Is(err, apierr.KindValidation) {
			t.Fatalf("case %d: expected VALIDATION, got %v", i, err)
		}
	}
	if h.ctx.Calls() != 0 || provider.Calls() != 0 || h.u.deps.Dedup.InFlight() != 0 {
		t.Fatalf("side effects before validation: context=%d provider=%d", h.ctx.Calls(), provider.Calls())
	}
}

func TestUnknownSubjectIsNotFound(t *testing.T) {
	provider := &fakeProvider{}
	h := newHarness(t, provider, nil)
	_, err := h.u.Generate(context.Background(), types.GenerationRequest{SubjectID: "missing"})
	if !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if provider.Calls() != 0 {
		t.Fatalf("provider called for missing subject")
	}
}

func TestAuditFailureDoesNotFailCaller(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	h.audits.err = errors.New("disk full")
	resp, err := h.u.Generate(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !resp.OK || resp.Meta.AuditID != "" {
		t.Fatalf("meta=%+v", resp.Meta)
	}
}

func TestSignalReadFailureScoresWithoutHistory(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	h.signals.err = errors.New("connection refused")
	resp, err := h.u.Generate(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Meta.IsFallback {
		t.Fatalf("history failure must not degrade the brief")
	}
	assertConsistent(t, resp.Data)
}

func TestHistoryShapesSelection(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	h.signals.signals = []types.HistoricalSignal{
		{Key: "everyone keeps asking what glow serum is", Text: "Everyone keeps asking what Glow Serum is", Rejections: 3},
		{Key: "why is nobody talking about glow serum", Text: "Why is nobody talking about Glow Serum?", Approvals: 2, Winners: 2},
	}
	h.audits.recent = []string{"Last chance to grab Glow Serum before it sells out"}

	resp, err := h.u.Generate(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Data.SelectedSpokenHook != "Why is nobody talking about Glow Serum?" {
		t.Fatalf("selected=%q", resp.Data.SelectedSpokenHook)
	}
	last := resp.Data.SpokenHookOptions[len(resp.Data.SpokenHookOptions)-1]
	if last != "Everyone keeps asking what Glow Serum is" {
		t.Fatalf("rejected hook should rank last, options=%v", resp.Data.SpokenHookOptions)
	}
	for _, s := range resp.Data.Diagnostics.SpokenHooks {
		if s.Option.Text == "Why is nobody talking about Glow Serum?" && !s.WinnerCandidate {
			t.Fatalf("expected winner candidate flag")
		}
	}
}

func TestHookFamilyFilter(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	req := h.request()
	req.Tuning.HookFamilies = []string{"fear_of_missing_out"}
	resp, err := h.u.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Data.SelectedSpokenHook != "Last chance to grab Glow Serum before it sells out" {
		t.Fatalf("selected=%q", resp.Data.SelectedSpokenHook)
	}
	if resp.Data.HookFamily != "fomo" {
		t.Fatalf("family=%q", resp.Data.HookFamily)
	}
}

func TestPartialModeSkipsModelAndDedup(t *testing.T) {
	provider := &fakeProvider{}
	h := newHarness(t, provider, nil)

	full, err := h.u.Generate(context.Background(), h.request())
	if err != nil {
		t.Fatalf("full: %v", err)
	}

	locked := "Stop scrolling, your serum is lying to you"
	req := types.GenerationRequest{
		SubjectID:      h.product.ID.String(),
		Mode:           types.ModePartial,
		PreviousResult: full.Data,
		LockedFields:   []string{types.FieldSpokenHook},
		EditedValues:   map[string]string{types.FieldSpokenHook: locked},
	}
	resp, err := h.u.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if provider.Calls() != 1 {
		t.Fatalf("partial mode called the provider")
	}
	if resp.Data.SelectedSpokenHook != locked {
		t.Fatalf("locked hook changed: %q", resp.Data.SelectedSpokenHook)
	}
	if resp.Meta.Provider != ProviderReadjust || resp.Meta.Mode != "partial" || resp.Meta.IsFallback {
		t.Fatalf("meta=%+v", resp.Meta)
	}
	assertConsistent(t, resp.Data)
	if len(h.audits.Records()) != 1 {
		t.Fatalf("partial mode must not write audit records")
	}

	req.LockedFields = []string{"hashtags"}
	if _, err := h.u.Generate(context.Background(), req); !apierr.Is(err, apierr.KindValidation) {
		t.Fatalf("expected VALIDATION for unknown locked field, got %v", err)
	}
}

func TestShapeIgnoresNonce(t *testing.T) {
	a := types.GenerationRequest{SubjectID: "p1", Mode: types.ModeFull, Nonce: "a"}
	b := types.GenerationRequest{SubjectID: "p1", Mode: types.ModeFull, Nonce: "b"}
	if shapeOf(a) != shapeOf(b) {
		t.Fatalf("nonce changed the shape")
	}
	b.Tuning.Tone = "bold"
	if shapeOf(a) == shapeOf(b) {
		t.Fatalf("tone did not change the shape")
	}
}
