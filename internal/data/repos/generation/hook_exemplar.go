package generation

import (
	"context"

	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type HookExemplarRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exemplars []*types.HookExemplar) ([]*types.HookExemplar, error)
	ListForCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.HookExemplar, error)
}

type hookExemplarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHookExemplarRepo(db *gorm.DB, baseLog *logger.Logger) HookExemplarRepo {
	repoLog := baseLog.With("repo", "HookExemplarRepo")
	return &hookExemplarRepo{db: db, log: repoLog}
}

func (r *hookExemplarRepo) Create(ctx context.Context, tx *gorm.DB, exemplars []*types.HookExemplar) ([]*types.HookExemplar, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(exemplars) == 0 {
		return []*types.HookExemplar{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&exemplars).Error; err != nil {
		return nil, err
	}
	return exemplars, nil
}

// ListForCategory returns exemplars for category plus the uncategorized ones, newest first.
func (r *hookExemplarRepo) ListForCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.HookExemplar, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HookExemplar
	q := transaction.WithContext(ctx).
		Where("category = ? OR category = ''", category).
		Order("created_at DESC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
