package brief

// Lockable output fields. These names are shared by partial-mode requests,
// the audit log and the rendered brief.
const (
	FieldSpokenHook      = "selected_spoken_hook"
	FieldVisualHook      = "selected_visual_hook"
	FieldTextOverlay     = "selected_text_overlay"
	FieldCTA             = "selected_cta"
	FieldEmotionalDriver = "emotional_driver"
	FieldScriptBody      = "script_body"
)

var lockableFields = []string{
	FieldSpokenHook,
	FieldVisualHook,
	FieldTextOverlay,
	FieldCTA,
	FieldEmotionalDriver,
	FieldScriptBody,
}

func LockableFields() []string {
	out := make([]string, len(lockableFields))
	copy(out, lockableFields)
	return out
}

func IsLockable(name string) bool {
	for _, f := range lockableFields {
		if f == name {
			return true
		}
	}
	return false
}

type ScriptBeat struct {
	Duration string `json:"duration"`
	Action   string `json:"action"`
}

type Script struct {
	Hook  string       `json:"hook"`
	Body  string       `json:"body"`
	CTA   string       `json:"cta"`
	Beats []ScriptBeat `json:"beats,omitempty"`
}

// EditingNotes is the editor-facing half of the brief.
type EditingNotes struct {
	ContentType string `json:"content_type,omitempty"`
	Pace        string `json:"pace"`
	Music       string `json:"music"`
	TextStyle   string `json:"text_style"`
	Opening     string `json:"opening"`
}

// Diagnostics carries the scored ranking behind each selection. It is
// informational only and never consulted by partial regeneration.
type Diagnostics struct {
	SpokenHooks  []ScoredOption `json:"spoken_hooks,omitempty"`
	VisualHooks  []ScoredOption `json:"visual_hooks,omitempty"`
	TextOverlays []ScoredOption `json:"text_overlays,omitempty"`
	CTAs         []ScoredOption `json:"ctas,omitempty"`
}

type GenerationResult struct {
	SpokenHookOptions  []string `json:"spoken_hook_options"`
	SelectedSpokenHook string   `json:"selected_spoken_hook"`

	VisualHookOptions  []string `json:"visual_hook_options"`
	SelectedVisualHook string   `json:"selected_visual_hook"`

	TextOverlayOptions  []string `json:"text_overlay_options"`
	SelectedTextOverlay string   `json:"selected_text_overlay"`

	CTAOptions  []string `json:"cta_options"`
	SelectedCTA string   `json:"selected_cta"`

	Script          Script       `json:"script"`
	EmotionalDriver string       `json:"emotional_driver"`
	HookFamily      string       `json:"hook_family"`
	Edge            bool         `json:"edge"`
	EditingNotes    EditingNotes `json:"editing_notes"`

	ParseStrategy string       `json:"parse_strategy,omitempty"`
	Provider      string       `json:"provider,omitempty"`
	Diagnostics   *Diagnostics `json:"diagnostics,omitempty"`
}

// Field returns the current value of a lockable field.
func (r *GenerationResult) Field(name string) (string, bool) {
	switch name {
	case FieldSpokenHook:
		return r.SelectedSpokenHook, true
	case FieldVisualHook:
		return r.SelectedVisualHook, true
	case FieldTextOverlay:
		return r.SelectedTextOverlay, true
	case FieldCTA:
		return r.SelectedCTA, true
	case FieldEmotionalDriver:
		return r.EmotionalDriver, true
	case FieldScriptBody:
		return r.Script.Body, true
	}
	return "", false
}

// MissingSelections lists every selected_X whose value is not a member of
// its options list. An empty result means the result is consistent.
func (r *GenerationResult) MissingSelections() []string {
	var out []string
	check := func(name, selected string, options []string) {
		if !contains(options, selected) {
			out = append(out, name)
		}
	}
	check(FieldSpokenHook, r.SelectedSpokenHook, r.SpokenHookOptions)
	check(FieldVisualHook, r.SelectedVisualHook, r.VisualHookOptions)
	check(FieldTextOverlay, r.SelectedTextOverlay, r.TextOverlayOptions)
	check(FieldCTA, r.SelectedCTA, r.CTAOptions)
	return out
}

// Clone returns a deep copy so callers may mutate without touching shared data.
func (r *GenerationResult) Clone() *GenerationResult {
	if r == nil {
		return nil
	}
	c := *r
	c.SpokenHookOptions = cloneStrings(r.SpokenHookOptions)
	c.VisualHookOptions = cloneStrings(r.VisualHookOptions)
	c.TextOverlayOptions = cloneStrings(r.TextOverlayOptions)
	c.CTAOptions = cloneStrings(r.CTAOptions)
	if r.Script.Beats != nil {
		c.Script.Beats = append([]ScriptBeat(nil), r.Script.Beats...)
	}
	if r.Diagnostics != nil {
		d := *r.Diagnostics
		c.Diagnostics = &d
	}
	return &c
}

// EnsureMember returns options with selected present, prepending it when absent.
func EnsureMember(options []string, selected string) []string {
	if contains(options, selected) {
		return cloneStrings(options)
	}
	out := make([]string, 0, len(options)+1)
	out = append(out, selected)
	return append(out, options...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
