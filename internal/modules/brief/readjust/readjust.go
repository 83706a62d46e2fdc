// Package readjust rebuilds a brief around caller-locked fields without a
// model call. Given the same inputs it always produces the same result.
package readjust

import (
	"fmt"
	"sort"
	"strings"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

const overlayWords = 6

// Readjust copies every locked field verbatim from edited and derives the
// unlocked fields from previous, consulting the locked values.
func Readjust(previous *types.GenerationResult, locked []string, edited map[string]string) (*types.GenerationResult, error) {
	if previous == nil {
		return nil, apierr.Validation("previous_result_required", fmt.Errorf("partial mode requires previous_result"))
	}
	pins, err := lockState(locked, edited)
	if err != nil {
		return nil, err
	}

	out := &types.GenerationResult{
		Script:        types.Script{Beats: append([]types.ScriptBeat(nil), previous.Script.Beats...)},
		ParseStrategy: previous.ParseStrategy,
		Provider:      previous.Provider,
	}

	// spoken hook
	if v, ok := pins[types.FieldSpokenHook]; ok {
		out.SelectedSpokenHook = v
	} else if driver, ok := pins[types.FieldEmotionalDriver]; ok {
		out.SelectedSpokenHook = hookForEmotion(previous, driver)
	} else {
		out.SelectedSpokenHook = previousHook(previous)
	}
	hook := out.SelectedSpokenHook

	// emotional driver
	if v, ok := pins[types.FieldEmotionalDriver]; ok {
		out.EmotionalDriver = v
	} else {
		out.EmotionalDriver = taxonomy.InferEmotion(hook)
	}

	family := taxonomy.FamilyOf(taxonomy.ClusterKey("", hook))
	out.HookFamily = family
	out.Edge = taxonomy.IsEdgy(family)

	// visual hook
	if v, ok := pins[types.FieldVisualHook]; ok {
		out.SelectedVisualHook = v
	} else {
		out.SelectedVisualHook = visualFor(previous.VisualHookOptions, family)
	}

	// text overlay
	if v, ok := pins[types.FieldTextOverlay]; ok {
		out.SelectedTextOverlay = v
	} else {
		out.SelectedTextOverlay = overlayFor(previous.TextOverlayOptions, hook)
	}

	// cta
	if v, ok := pins[types.FieldCTA]; ok {
		out.SelectedCTA = v
	} else {
		out.SelectedCTA = ctaFor(previous.CTAOptions, out.EmotionalDriver)
	}

	// script
	if v, ok := pins[types.FieldScriptBody]; ok {
		out.Script.Body = v
	} else {
		out.Script.Body = previous.Script.Body
	}
	out.Script.Hook = hook
	out.Script.CTA = out.SelectedCTA

	out.SpokenHookOptions = types.EnsureMember(previous.SpokenHookOptions, out.SelectedSpokenHook)
	out.VisualHookOptions = types.EnsureMember(previous.VisualHookOptions, out.SelectedVisualHook)
	out.TextOverlayOptions = types.EnsureMember(previous.TextOverlayOptions, out.SelectedTextOverlay)
	out.CTAOptions = types.EnsureMember(previous.CTAOptions, out.SelectedCTA)

	out.EditingNotes = Notes(previous.EditingNotes.ContentType, out.SelectedVisualHook, out.SelectedTextOverlay)
	return out, nil
}

// Notes builds editing notes for a content type around the chosen opening.
func Notes(contentType, visual, overlay string) types.EditingNotes {
	pace, music, textStyle := taxonomy.EditingStyle(contentType)
	opening := strings.TrimSpace(visual)
	if o := strings.TrimSpace(overlay); o != "" {
		opening = fmt.Sprintf("%s. Overlay: %q", strings.TrimSuffix(opening, "."), o)
	}
	return types.EditingNotes{
		ContentType: contentType,
		Pace:        pace,
		Music:       music,
		TextStyle:   textStyle,
		Opening:     opening,
	}
}

// CompressHook shortens a hook to an on-screen overlay.
func CompressHook(hook string) string {
	return strings.TrimRight(taxonomy.FirstWords(hook, overlayWords), ",;:-")
}

func lockState(locked []string, edited map[string]string) (map[string]string, error) {
	pins := make(map[string]string, len(locked))
	var unknown, missing []string
	for _, name := range locked {
		name = strings.TrimSpace(name)
		if !types.IsLockable(name) {
			unknown = append(unknown, name)
			continue
		}
		v, ok := edited[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		pins[name] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apierr.Validation("unknown_locked_field", fmt.Errorf("unknown locked fields: %s", strings.Join(unknown, ", ")))
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apierr.Validation("locked_field_value_missing", fmt.Errorf("locked fields without edited value: %s", strings.Join(missing, ", ")))
	}
	return pins, nil
}

func previousHook(prev *types.GenerationResult) string {
	if strings.TrimSpace(prev.SelectedSpokenHook) != "" {
		return prev.SelectedSpokenHook
	}
	if len(prev.SpokenHookOptions) > 0 {
		return prev.SpokenHookOptions[0]
	}
	return ""
}

// hookForEmotion picks the best-ranked previous hook whose inferred emotion
// matches driver, else the previous selection. Options are stored ranked.
func hookForEmotion(prev *types.GenerationResult, driver string) string {
	want := taxonomy.NormalizeKey(driver)
	for _, h := range prev.SpokenHookOptions {
		if taxonomy.InferEmotion(h) == want {
			return h
		}
	}
	return previousHook(prev)
}

func visualFor(options []string, family string) string {
	for _, v := range options {
		if taxonomy.MatchesVisualCues(family, v) {
			return v
		}
	}
	return taxonomy.VisualTemplate(family)
}

func overlayFor(options []string, hook string) string {
	hookToks := taxonomy.Tokens(hook)
	best, bestN := "", 0
	for _, o := range options {
		if n := taxonomy.Overlap(taxonomy.Tokens(o), hookToks); n > bestN {
			best, bestN = o, n
		}
	}
	if bestN > 0 {
		return best
	}
	return CompressHook(hook)
}

func ctaFor(options []string, driver string) string {
	want := taxonomy.NormalizeKey(driver)
	for _, c := range options {
		if taxonomy.InferEmotion(c) == want {
			return c
		}
	}
	return taxonomy.CTATemplate(driver)
}
