package readjust

import (
	"reflect"
	"testing"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

func previous() *types.GenerationResult {
	return &types.GenerationResult{
		SpokenHookOptions: []string{
			"Stop scrolling if your skin feels dry",
			"Why is nobody talking about this serum?",
			"Last chance to grab the serum today",
		},
		SelectedSpokenHook:  "Stop scrolling if your skin feels dry",
		VisualHookOptions:   []string{"Hand slaps over the lens to reveal the serum", "Creator in a messy bathroom"},
		SelectedVisualHook:  "Hand slaps over the lens to reveal the serum",
		TextOverlayOptions:  []string{"Dry skin?", "The serum nobody talks about"},
		SelectedTextOverlay: "Dry skin?",
		CTAOptions:          []string{"Fix it today", "Grab yours now"},
		SelectedCTA:         "Fix it today",
		Script: types.Script{
			Hook:  "Stop scrolling if your skin feels dry",
			Body:  "Apply two drops, show the glow after a week.",
			CTA:   "Fix it today",
			Beats: []types.ScriptBeat{{Duration: "0-3s", Action: "Hook to camera"}},
		},
		EmotionalDriver: "frustration",
		EditingNotes:    types.EditingNotes{ContentType: "ugc_testimonial"},
		Provider:        "mock",
	}
}

func assertLocked(t *testing.T, got *types.GenerationResult, locked []string, edited map[string]string) {
	t.Helper()
	for _, f := range locked {
		v, _ := got.Field(f)
		if v != edited[f] {
			t.Fatalf("locked %s=%q want %q", f, v, edited[f])
		}
	}
	if missing := got.MissingSelections(); len(missing) != 0 {
		t.Fatalf("selected values missing from options: %v", missing)
	}
}

func TestLockedHookDrivesUnlockedFields(t *testing.T) {
	locked := []string{types.FieldSpokenHook}
	edited := map[string]string{types.FieldSpokenHook: "Why is nobody talking about this serum?"}

	got, err := Readjust(previous(), locked, edited)
	if err != nil {
		t.Fatalf("Readjust: %v", err)
	}
	assertLocked(t, got, locked, edited)

	if got.EmotionalDriver != taxonomy.EmotionCuriosity {
		t.Fatalf("driver=%q", got.EmotionalDriver)
	}
	if got.HookFamily != taxonomy.FamilyCuriosityGap || got.Edge {
		t.Fatalf("family=%q edge=%v", got.HookFamily, got.Edge)
	}
	if got.SelectedVisualHook != "Hand slaps over the lens to reveal the serum" {
		t.Fatalf("visual=%q", got.SelectedVisualHook)
	}
	if got.SelectedTextOverlay != "The serum nobody talks about" {
		t.Fatalf("overlay=%q", got.SelectedTextOverlay)
	}
	if got.SelectedCTA != taxonomy.CTATemplate(taxonomy.EmotionCuriosity) || got.CTAOptions[0] != got.SelectedCTA {
		t.Fatalf("cta=%q options=%v", got.SelectedCTA, got.CTAOptions)
	}
	if got.Script.Hook != got.SelectedSpokenHook || got.Script.CTA != got.SelectedCTA {
		t.Fatalf("script not mirrored: %+v", got.Script)
	}
	if got.Script.Body != previous().Script.Body {
		t.Fatalf("body changed")
	}
	if got.EditingNotes.Pace != "Smooth transitions" {
		t.Fatalf("notes=%+v", got.EditingNotes)
	}
}

func TestLockedDriverPicksMatchingHookAndCTA(t *testing.T) {
	locked := []string{types.FieldEmotionalDriver}
	edited := map[string]string{types.FieldEmotionalDriver: taxonomy.EmotionUrgency}

	got, err := Readjust(previous(), locked, edited)
	if err != nil {
		t.Fatalf("Readjust: %v", err)
	}
	assertLocked(t, got, locked, edited)

	if got.SelectedSpokenHook != "Last chance to grab the serum today" {
		t.Fatalf("hook=%q", got.SelectedSpokenHook)
	}
	if got.SelectedCTA != "Fix it today" {
		t.Fatalf("cta=%q", got.SelectedCTA)
	}
	if got.HookFamily != taxonomy.FamilyFOMO {
		t.Fatalf("family=%q", got.HookFamily)
	}
	if got.SelectedVisualHook != taxonomy.VisualTemplate(taxonomy.FamilyFOMO) {
		t.Fatalf("visual=%q", got.SelectedVisualHook)
	}
}

func TestAllFieldsLocked(t *testing.T) {
	edited := map[string]string{
		types.FieldSpokenHook:      "My own hook line here",
		types.FieldVisualHook:      "My own visual",
		types.FieldTextOverlay:     "",
		types.FieldCTA:             "Tap the cart",
		types.FieldEmotionalDriver: "nostalgia",
		types.FieldScriptBody:      "Custom body",
	}
	locked := types.LockableFields()
	got, err := Readjust(previous(), locked, edited)
	if err != nil {
		t.Fatalf("Readjust: %v", err)
	}
	for _, f := range locked {
		v, _ := got.Field(f)
		if v != edited[f] {
			t.Fatalf("locked %s=%q want %q", f, v, edited[f])
		}
	}
	if missing := got.MissingSelections(); len(missing) != 0 {
		t.Fatalf("missing=%v", missing)
	}
	if got.SpokenHookOptions[0] != "My own hook line here" {
		t.Fatalf("options=%v", got.SpokenHookOptions)
	}
}

func TestNothingLockedKeepsPreviousSelection(t *testing.T) {
	got, err := Readjust(previous(), nil, nil)
	if err != nil {
		t.Fatalf("Readjust: %v", err)
	}
	if got.SelectedSpokenHook != previous().SelectedSpokenHook {
		t.Fatalf("hook=%q", got.SelectedSpokenHook)
	}
	if got.HookFamily != taxonomy.FamilyPatternInterrupt || !got.Edge {
		t.Fatalf("family=%q edge=%v", got.HookFamily, got.Edge)
	}
	if missing := got.MissingSelections(); len(missing) != 0 {
		t.Fatalf("missing=%v", missing)
	}
}

func TestReadjustIsDeterministic(t *testing.T) {
	locked := []string{types.FieldCTA, types.FieldScriptBody}
	edited := map[string]string{types.FieldCTA: "Shop now", types.FieldScriptBody: "b"}
	a, err := Readjust(previous(), locked, edited)
	if err != nil {
		t.Fatalf("Readjust: %v", err)
	}
	b, _ := Readjust(previous(), locked, edited)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ")
	}
}

func TestReadjustValidation(t *testing.T) {
	if _, err := Readjust(previous(), []string{"selected_font"}, map[string]string{"selected_font": "x"}); !apierr.Is(err, apierr.KindValidation) {
		t.Fatalf("unknown field err=%v", err)
	}
	if _, err := Readjust(previous(), []string{types.FieldCTA}, map[string]string{}); !apierr.Is(err, apierr.KindValidation) {
		t.Fatalf("missing value err=%v", err)
	}
	if _, err := Readjust(nil, nil, nil); !apierr.Is(err, apierr.KindValidation) {
		t.Fatalf("nil previous err=%v", err)
	}
}

func TestCompressHook(t *testing.T) {
	if got := CompressHook("Why is nobody talking about this serum, seriously?"); got != "Why is nobody talking about this" {
		t.Fatalf("got %q", got)
	}
}
