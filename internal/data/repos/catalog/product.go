package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(products) == 0 {
		return []*types.Product{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (pr *productRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Product

	if len(productIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns (nil, nil) when the product does not exist or was deleted.
func (pr *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var p types.Product
	err := transaction.WithContext(ctx).
		Where("id = ?", productID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
