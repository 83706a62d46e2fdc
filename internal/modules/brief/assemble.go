package brief

import (
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/readjust"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/selection"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
)

// assemble scores and diversifies every category of d and builds a result in
// which each selection is the top-ranked member of its options.
func (u Usecases) assemble(d Decoded, snap types.SignalSnapshot, now time.Time, tuning types.Tuning, productName string) *types.GenerationResult {
	cfg := u.deps.Config
	scorer := u.deps.Scorer

	spoken := preferFamilies(scorer.ScoreAll(d.SpokenHooks, snap, now), tuning.HookFamilies)
	visual := selection.Order(scorer.ScoreAll(d.VisualHooks, snap, now))
	overlay := selection.Order(scorer.ScoreAll(d.TextOverlays, snap, now))
	cta := selection.Order(scorer.ScoreAll(d.CTAs, snap, now))

	out := &types.GenerationResult{}

	topSpoken := truncate(spoken, cfg.MaxSpokenHooks)
	out.SpokenHookOptions = types.Texts(topSpoken)
	var lead types.ScoredOption
	if len(topSpoken) > 0 {
		lead = topSpoken[0]
	}
	out.SelectedSpokenHook = lead.Option.Text
	hook := out.SelectedSpokenHook

	out.HookFamily = taxonomy.FamilyOf(lead.ClusterKey)
	if out.HookFamily == "" {
		out.HookFamily = taxonomy.FamilyOf(taxonomy.ClusterKey("", hook))
	}
	out.Edge = taxonomy.IsEdgy(out.HookFamily)

	switch {
	case d.EmotionalDriver != "":
		out.EmotionalDriver = d.EmotionalDriver
	case lead.Option.Emotion != "":
		out.EmotionalDriver = lead.Option.Emotion
	default:
		out.EmotionalDriver = taxonomy.InferEmotion(hook)
	}

	out.VisualHookOptions, out.SelectedVisualHook = pick(truncate(visual, cfg.MaxOptions), taxonomy.VisualTemplate(out.HookFamily))
	out.TextOverlayOptions, out.SelectedTextOverlay = pick(truncate(overlay, cfg.MaxOptions), readjust.CompressHook(hook))
	out.CTAOptions, out.SelectedCTA = pick(truncate(cta, cfg.MaxOptions), taxonomy.CTATemplate(out.EmotionalDriver))

	out.Script = types.Script{
		Hook:  hook,
		Body:  strings.TrimSpace(d.Script.Body),
		CTA:   out.SelectedCTA,
		Beats: append([]types.ScriptBeat(nil), d.Script.Beats...),
	}
	if out.Script.Body == "" {
		out.Script.Body = defaultBody(productName)
	}
	if len(out.Script.Beats) == 0 {
		out.Script.Beats = defaultBeats()
	}

	out.EditingNotes = readjust.Notes(tuning.ContentType, out.SelectedVisualHook, out.SelectedTextOverlay)

	if cfg.IncludeDiagnostics {
		out.Diagnostics = &types.Diagnostics{
			SpokenHooks:  spoken,
			VisualHooks:  visual,
			TextOverlays: overlay,
			CTAs:         cta,
		}
	}
	return out
}

// pick returns the option texts and the selection, falling back to def when
// the category is empty.
func pick(ranked []types.ScoredOption, def string) ([]string, string) {
	if len(ranked) == 0 {
		return []string{def}, def
	}
	return types.Texts(ranked), ranked[0].Option.Text
}

// preferFamilies orders scored with the requested families ahead of the rest.
// When no option matches the filter the plain diversity order is used.
func preferFamilies(scored []types.ScoredOption, families []string) []types.ScoredOption {
	want := map[string]bool{}
	for _, f := range families {
		if c := taxonomy.CanonicalFamily(f); c != "" {
			want[c] = true
		}
	}
	if len(want) == 0 {
		return selection.Order(scored)
	}
	var in, rest []types.ScoredOption
	for _, s := range scored {
		if want[taxonomy.FamilyOf(s.ClusterKey)] {
			in = append(in, s)
		} else {
			rest = append(rest, s)
		}
	}
	if len(in) == 0 {
		return selection.Order(scored)
	}
	return append(selection.Order(in), selection.Order(rest)...)
}

func truncate(ordered []types.ScoredOption, max int) []types.ScoredOption {
	if max > 0 && len(ordered) > max {
		return ordered[:max]
	}
	return ordered
}

func defaultBody(productName string) string {
	name := strings.TrimSpace(productName)
	if name == "" {
		name = "the product"
	}
	return fmt.Sprintf("Show %s in use, call out the one result that matters most, then show the before and after.", name)
}

func defaultBeats() []types.ScriptBeat {
	return []types.ScriptBeat{
		{Duration: "0-3s", Action: "Hook"},
		{Duration: "3-12s", Action: "Product in use"},
		{Duration: "12-15s", Action: "Result and call to action"},
	}
}
