package brief

// CandidateOption is one creative unit proposed by the model, before scoring.
type CandidateOption struct {
	Text     string `json:"text"`
	Family   string `json:"family,omitempty"`
	Emotion  string `json:"emotion,omitempty"`
	Category string `json:"category,omitempty"`
}

// Option categories.
const (
	CategorySpokenHook  = "spoken_hook"
	CategoryVisualHook  = "visual_hook"
	CategoryTextOverlay = "text_overlay"
	CategoryCTA         = "cta"
)

type ScoredOption struct {
	Option          CandidateOption `json:"option"`
	Score           float64         `json:"score"`
	Reasons         []string        `json:"reasons"`
	ClusterKey      string          `json:"cluster_key"`
	WinnerCandidate bool            `json:"winner_candidate,omitempty"`
}

func Texts(scored []ScoredOption) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Option.Text)
	}
	return out
}
