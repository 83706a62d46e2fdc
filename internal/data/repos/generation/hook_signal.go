package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type HookSignalRepo interface {
	ListBySubject(ctx context.Context, tx *gorm.DB, subjectID string, limit int) ([]*types.HookSignal, error)
	RecordOutcome(ctx context.Context, tx *gorm.DB, subjectID, key, text string, outcome types.Outcome, at time.Time) (*types.HookSignal, error)
}

type hookSignalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHookSignalRepo(db *gorm.DB, baseLog *logger.Logger) HookSignalRepo {
	repoLog := baseLog.With("repo", "HookSignalRepo")
	return &hookSignalRepo{db: db, log: repoLog}
}

func (r *hookSignalRepo) ListBySubject(ctx context.Context, tx *gorm.DB, subjectID string, limit int) ([]*types.HookSignal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HookSignal
	if strings.TrimSpace(subjectID) == "" {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("updated_at DESC").
		Order("text_key ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RecordOutcome increments the tally for (subjectID, key), creating the row on first use.
func (r *hookSignalRepo) RecordOutcome(ctx context.Context, tx *gorm.DB, subjectID, key, text string, outcome types.Outcome, at time.Time) (*types.HookSignal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if strings.TrimSpace(subjectID) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("subject id and key required")
	}
	column, ok := outcomeColumn(outcome)
	if !ok {
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var out types.HookSignal
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		err := txx.Where("subject_id = ? AND text_key = ?", subjectID, key).First(&out).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			out = types.HookSignal{SubjectID: subjectID, Key: key, Text: text}
			applyOutcome(&out, outcome, at)
			return txx.Create(&out).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": at,
		}
		switch outcome {
		case types.OutcomeApproved:
			updates["last_approved_at"] = at
		case types.OutcomeRejected:
			updates["last_rejected_at"] = at
		}
		if err := txx.Model(&types.HookSignal{}).Where("id = ?", out.ID).Updates(updates).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", out.ID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func outcomeColumn(o types.Outcome) (string, bool) {
	switch o {
	case types.OutcomeApproved:
		return "approvals", true
	case types.OutcomeRejected:
		return "rejections", true
	case types.OutcomeUnderperformed:
		return "underperforms", true
	case types.OutcomeWinner:
		return "winners", true
	case types.OutcomePosted:
		return "postings", true
	}
	return "", false
}

func applyOutcome(s *types.HookSignal, o types.Outcome, at time.Time) {
	switch o {
	case types.OutcomeApproved:
		s.Approvals++
		s.LastApprovedAt = &at
	case types.OutcomeRejected:
		s.Rejections++
		s.LastRejectedAt = &at
	case types.OutcomeUnderperformed:
		s.Underperforms++
	case types.OutcomeWinner:
		s.Winners++
	case types.OutcomePosted:
		s.Postings++
	}
	s.CreatedAt = at
	s.UpdatedAt = at
}
