package brief

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

type FeedbackInput struct {
	SubjectID string
	Text      string
	Outcome   string
}

// RecordFeedback tallies an outcome against an option text so later scoring
// passes can reward or penalize it.
func (u Usecases) RecordFeedback(ctx context.Context, in FeedbackInput) (*types.HistoricalSignal, error) {
	if strings.TrimSpace(in.SubjectID) == "" {
		return nil, apierr.Validation("subject_id_required", fmt.Errorf("subject_id is required"))
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, apierr.Validation("text_required", fmt.Errorf("text is required"))
	}
	outcome, ok := types.ParseOutcome(strings.ToLower(strings.TrimSpace(in.Outcome)))
	if !ok {
		return nil, apierr.Validation("invalid_outcome", fmt.Errorf("unknown outcome %q", in.Outcome))
	}
	if u.deps.Signals == nil {
		return nil, fmt.Errorf("brief: signal store not configured")
	}
	if _, err := u.product(ctx, in.SubjectID); err != nil {
		return nil, err
	}
	sig, err := u.deps.Signals.RecordOutcome(ctx, strings.TrimSpace(in.SubjectID), in.Text, outcome, u.deps.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	u.deps.Metrics.ObserveFeedback(string(outcome))
	u.deps.Log.Info("brief feedback recorded", "subject_id", in.SubjectID, "outcome", outcome, "key", sig.Key)
	return sig, nil
}
