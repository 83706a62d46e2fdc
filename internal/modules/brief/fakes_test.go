package brief

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm/mock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	calls   int32
	started chan struct{}
	release chan struct{}
	reply   func(ctx context.Context, req llm.Request) (string, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.started != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return "", llm.Wrap(p.Name(), ctx.Err())
		}
	}
	if p.reply != nil {
		return p.reply(ctx, req)
	}
	return mock.New().Generate(ctx, req)
}

func (p *fakeProvider) Calls() int { return int(atomic.LoadInt32(&p.calls)) }

type fakeContext struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	calls    int
}

func newFakeContext(products ...*catalog.Product) *fakeContext {
	c := &fakeContext{products: map[string]*catalog.Product{}}
	for _, p := range products {
		c.products[p.ID.String()] = p
	}
	return c
}

func (c *fakeContext) Product(ctx context.Context, subjectID string) (*catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	p, ok := c.products[subjectID]
	if !ok {
		return nil, apierr.NotFound("product_not_found", fmt.Errorf("product %q not found", subjectID))
	}
	return p, nil
}

func (c *fakeContext) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeSignals struct {
	mu        sync.Mutex
	signals   []types.HistoricalSignal
	exemplars []string
	err       error
	reads     int
	recorded  []types.Outcome
}

func (s *fakeSignals) Signals(ctx context.Context, subjectID string) ([]types.HistoricalSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]types.HistoricalSignal(nil), s.signals...), nil
}

func (s *fakeSignals) Exemplars(ctx context.Context, category string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.exemplars...), nil
}

func (s *fakeSignals) RecordOutcome(ctx context.Context, subjectID, text string, outcome types.Outcome, at time.Time) (*types.HistoricalSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, outcome)
	return &types.HistoricalSignal{Text: text, Key: text, Approvals: 1}, nil
}

func (s *fakeSignals) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type fakeAudits struct {
	mu      sync.Mutex
	records []*types.AuditRecord
	recent  []string
	err     error
}

func (a *fakeAudits) Record(ctx context.Context, rec *types.AuditRecord) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return false, a.err
	}
	if rec.Nonce != nil {
		for _, r := range a.records {
			if r.Nonce != nil && *r.Nonce == *rec.Nonce {
				return false, nil
			}
		}
	}
	rec.CreatedAt = testNow
	a.records = append(a.records, rec)
	return true, nil
}

func (a *fakeAudits) RecentHooks(ctx context.Context, subjectID string, limit int) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.recent...), nil
}

func (a *fakeAudits) Get(ctx context.Context, id string) (*types.AuditRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.records {
		if r.ID.String() == id {
			return r, nil
		}
	}
	return nil, apierr.NotFound("audit_not_found", errors.New("not found"))
}

func (a *fakeAudits) Records() []*types.AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*types.AuditRecord(nil), a.records...)
}

type harness struct {
	u        Usecases
	provider *fakeProvider
	ctx      *fakeContext
	signals  *fakeSignals
	audits   *fakeAudits
	product  *catalog.Product
}

func newHarness(t *testing.T, provider *fakeProvider, mutate func(*UsecasesDeps)) *harness {
	t.Helper()
	product := &catalog.Product{Name: "Glow Serum", Category: "skincare"}
	_ = product.BeforeCreate(nil)
	h := &harness{
		provider: provider,
		ctx:      newFakeContext(product),
		signals:  &fakeSignals{},
		audits:   &fakeAudits{},
		product:  product,
	}
	deps := UsecasesDeps{
		Context: h.ctx,
		Signals: h.signals,
		Audits:  h.audits,
		Config:  DefaultConfig(),
		Now:     func() time.Time { return testNow },
	}
	if provider != nil {
		deps.Provider = provider
	}
	if mutate != nil {
		mutate(&deps)
	}
	h.u = New(deps)
	return h
}

func (h *harness) request() types.GenerationRequest {
	return types.GenerationRequest{SubjectID: h.product.ID.String(), Mode: types.ModeFull}
}

func assertConsistent(t *testing.T, res *types.GenerationResult) {
	t.Helper()
	if res == nil {
		t.Fatalf("nil result")
	}
	if missing := res.MissingSelections(); len(missing) > 0 {
		t.Fatalf("selected values not in options: %v", missing)
	}
	if res.SelectedSpokenHook == "" || res.SelectedCTA == "" || res.SelectedVisualHook == "" || res.SelectedTextOverlay == "" {
		t.Fatalf("blank selection: %+v", res)
	}
	if res.Script.Hook != res.SelectedSpokenHook || res.Script.CTA != res.SelectedCTA {
		t.Fatalf("script does not mirror selections: %+v", res.Script)
	}
}
