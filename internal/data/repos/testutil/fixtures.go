package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name, category string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   category,
		Benefits:   datatypes.JSON([]byte(`["glowing skin"]`)),
		PainPoints: datatypes.JSON([]byte(`["dull skin"]`)),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedExemplar(tb testing.TB, ctx context.Context, tx *gorm.DB, category, text string, at time.Time) *types.HookExemplar {
	tb.Helper()
	e := &types.HookExemplar{
		ID:        uuid.New(),
		Category:  category,
		Text:      text,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed exemplar: %v", err)
	}
	return e
}

func SeedAudit(tb testing.TB, ctx context.Context, tx *gorm.DB, subjectID, mode, hook string, at time.Time) *types.AuditRecord {
	tb.Helper()
	rec := &types.AuditRecord{
		ID:                 uuid.New(),
		SubjectID:          subjectID,
		CorrelationID:      uuid.NewString(),
		Mode:               mode,
		Input:              datatypes.JSON([]byte(`{}`)),
		Result:             datatypes.JSON([]byte(`{}`)),
		SelectedSpokenHook: hook,
		CreatedAt:          at,
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed audit: %v", err)
	}
	return rec
}
