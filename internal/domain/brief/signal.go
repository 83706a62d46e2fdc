package brief

import (
	"sort"
	"time"
)

// HistoricalSignal aggregates outcomes recorded for one normalized option text.
type HistoricalSignal struct {
	Text           string     `json:"text"`
	Key            string     `json:"key"`
	Approvals      int        `json:"approvals"`
	Rejections     int        `json:"rejections"`
	Underperforms  int        `json:"underperforms"`
	Winners        int        `json:"winners"`
	Postings       int        `json:"postings"`
	LastApprovedAt *time.Time `json:"last_approved_at,omitempty"`
	LastRejectedAt *time.Time `json:"last_rejected_at,omitempty"`
}

// SignalSnapshot is the read-only history view used for one generation pass.
// Signals is keyed by normalized option text.
type SignalSnapshot struct {
	Signals      map[string]HistoricalSignal `json:"signals"`
	Exemplars    []string                    `json:"exemplars"`
	RecentHooks  []string                    `json:"recent_hooks"`
	SubjectTerms []string                    `json:"subject_terms"`
}

func (s SignalSnapshot) Signal(key string) (HistoricalSignal, bool) {
	if s.Signals == nil {
		return HistoricalSignal{}, false
	}
	sig, ok := s.Signals[key]
	return sig, ok
}

// Rejected returns texts with more rejections or underperforms than approvals.
func (s SignalSnapshot) Rejected() []string {
	var out []string
	for _, sig := range s.Signals {
		if sig.Rejections+sig.Underperforms > sig.Approvals+sig.Winners {
			out = append(out, sig.Text)
		}
	}
	sort.Strings(out)
	return out
}

// Outcome is a piece of feedback recorded against a previously generated option.
type Outcome string

const (
	OutcomeApproved       Outcome = "approved"
	OutcomeRejected       Outcome = "rejected"
	OutcomeUnderperformed Outcome = "underperformed"
	OutcomeWinner         Outcome = "winner"
	OutcomePosted         Outcome = "posted"
)

func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomeApproved, OutcomeRejected, OutcomeUnderperformed, OutcomeWinner, OutcomePosted:
		return Outcome(s), true
	}
	return "", false
}
