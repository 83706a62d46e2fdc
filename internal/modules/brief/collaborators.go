package brief

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/hookbrief-backend/internal/data/repos"
	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

// ContextProvider resolves the subject a brief is generated for.
// A missing subject is a NOT_FOUND error.
type ContextProvider interface {
	Product(ctx context.Context, subjectID string) (*catalog.Product, error)
}

// SignalStore serves history for scoring and prompting. Callers treat read
// failures as empty history.
type SignalStore interface {
	Signals(ctx context.Context, subjectID string) ([]types.HistoricalSignal, error)
	Exemplars(ctx context.Context, category string) ([]string, error)
	RecordOutcome(ctx context.Context, subjectID, text string, outcome types.Outcome, at time.Time) (*types.HistoricalSignal, error)
}

// AuditSink stores generation records. Record reports created=false for a
// nonce that was already recorded.
type AuditSink interface {
	Record(ctx context.Context, rec *types.AuditRecord) (created bool, err error)
	RecentHooks(ctx context.Context, subjectID string, limit int) ([]string, error)
	Get(ctx context.Context, id string) (*types.AuditRecord, error)
}

type repoContext struct {
	products repos.ProductRepo
}

func NewRepoContext(products repos.ProductRepo) ContextProvider {
	return &repoContext{products: products}
}

func (c *repoContext) Product(ctx context.Context, subjectID string) (*catalog.Product, error) {
	id, err := uuid.Parse(strings.TrimSpace(subjectID))
	if err != nil {
		return nil, apierr.NotFound("product_not_found", fmt.Errorf("product %q not found", subjectID))
	}
	p, err := c.products.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("product_not_found", fmt.Errorf("product %q not found", subjectID))
	}
	return p, nil
}

type repoSignals struct {
	signals   repos.HookSignalRepo
	exemplars repos.HookExemplarRepo
	cfg       Config
}

func NewRepoSignalStore(signals repos.HookSignalRepo, exemplars repos.HookExemplarRepo, cfg Config) SignalStore {
	return &repoSignals{signals: signals, exemplars: exemplars, cfg: cfg.normalized()}
}

func (s *repoSignals) Signals(ctx context.Context, subjectID string) ([]types.HistoricalSignal, error) {
	rows, err := s.signals.ListBySubject(ctx, nil, subjectID, s.cfg.SignalLimit)
	if err != nil {
		return nil, err
	}
	out := make([]types.HistoricalSignal, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Historical())
	}
	return out, nil
}

func (s *repoSignals) Exemplars(ctx context.Context, category string) ([]string, error) {
	rows, err := s.exemplars.ListForCategory(ctx, nil, category, s.cfg.ExemplarLimit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Text)
	}
	return out, nil
}

func (s *repoSignals) RecordOutcome(ctx context.Context, subjectID, text string, outcome types.Outcome, at time.Time) (*types.HistoricalSignal, error) {
	key := taxonomy.NormalizeKey(text)
	row, err := s.signals.RecordOutcome(ctx, nil, subjectID, key, strings.TrimSpace(text), outcome, at)
	if err != nil {
		return nil, err
	}
	h := row.Historical()
	return &h, nil
}

type repoAudits struct {
	audits repos.AuditRepo
}

func NewRepoAuditSink(audits repos.AuditRepo) AuditSink {
	return &repoAudits{audits: audits}
}

func (a *repoAudits) Record(ctx context.Context, rec *types.AuditRecord) (bool, error) {
	return a.audits.Create(ctx, nil, rec)
}

func (a *repoAudits) RecentHooks(ctx context.Context, subjectID string, limit int) ([]string, error) {
	return a.audits.RecentSelectedHooks(ctx, nil, subjectID, limit)
}

func (a *repoAudits) Get(ctx context.Context, id string) (*types.AuditRecord, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierr.NotFound("audit_not_found", fmt.Errorf("audit record %q not found", id))
	}
	rec, err := a.audits.GetByID(ctx, nil, parsed)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apierr.NotFound("audit_not_found", fmt.Errorf("audit record %q not found", id))
	}
	return rec, nil
}
