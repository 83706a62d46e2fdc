package brief

import "strings"

type Mode string

const (
	ModeFull    Mode = "full"
	ModePartial Mode = "partial"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFull:
		return ModeFull, true
	case ModePartial:
		return ModePartial, true
	}
	return "", false
}

type Tuning struct {
	Tone         string   `json:"tone,omitempty"`
	TargetLength string   `json:"target_length,omitempty"`
	HookFamilies []string `json:"hook_families,omitempty"`
	ContentType  string   `json:"content_type,omitempty"`
}

// GenerationRequest is built once per inbound call and treated as immutable.
type GenerationRequest struct {
	SubjectID      string
	Mode           Mode
	Tuning         Tuning
	Reference      string
	Nonce          string
	LockedFields   []string
	PreviousResult *GenerationResult
	EditedValues   map[string]string
	CorrelationID  string
}
