package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AuditRepo interface {
	// Create inserts rec. created is false when a record with the same nonce
	// already exists; that is not an error.
	Create(ctx context.Context, tx *gorm.DB, rec *types.AuditRecord) (created bool, err error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AuditRecord, error)
	RecentSelectedHooks(ctx context.Context, tx *gorm.DB, subjectID string, limit int) ([]string, error)
}

type auditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	repoLog := baseLog.With("repo", "AuditRepo")
	return &auditRepo{db: db, log: repoLog}
}

func (r *auditRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.AuditRecord) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rec == nil {
		return false, nil
	}
	if rec.Nonce != nil && strings.TrimSpace(*rec.Nonce) == "" {
		rec.Nonce = nil
	}

	// Savepoint so a unique violation does not poison an outer postgres transaction.
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		return txx.Create(rec).Error
	})
	if err == nil {
		return true, nil
	}
	if rec.Nonce != nil && IsUniqueViolation(err) {
		r.log.Info("audit record already recorded", "subject_id", rec.SubjectID, "nonce", *rec.Nonce)
		return false, nil
	}
	return false, err
}

// GetByID returns (nil, nil) when no record exists.
func (r *auditRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AuditRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rec types.AuditRecord
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentSelectedHooks returns the selected spoken hooks of the subject's most recent
// full generations, newest first, skipping blanks.
func (r *auditRepo) RecentSelectedHooks(ctx context.Context, tx *gorm.DB, subjectID string, limit int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := []string{}
	if strings.TrimSpace(subjectID) == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 10
	}

	if err := transaction.WithContext(ctx).
		Model(&types.AuditRecord{}).
		Where("subject_id = ? AND mode = ? AND selected_spoken_hook <> ''", subjectID, "full").
		Order("created_at DESC").
		Limit(limit).
		Pluck("selected_spoken_hook", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
