package brief

import (
	"strings"
	"testing"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

func TestDecodeMixedOptionShapes(t *testing.T) {
	d := Decode(`{
		"spoken_hook_options": [
			"Why is nobody talking about this?",
			{"text": "POV: you finally slept in", "family": "POV", "emotion": "Aspiration"},
			{"text": "why is NOBODY talking about this"},
			"   ",
			42
		],
		"visual_hooks": ["Hand over the lens"],
		"overlays": ["Wait for it"],
		"cta_options": ["Link in bio"],
		"emotional_driver": "Urgency",
		"script": {"hook": "h", "body": " b ", "cta": "c", "scenes": [{"duration": "0-3s", "action": "Hook"}, "Demo"]}
	}`)

	if len(d.SpokenHooks) != 2 {
		t.Fatalf("expected duplicates and blanks dropped, got %+v", d.SpokenHooks)
	}
	if d.SpokenHooks[1].Family != "pov" || d.SpokenHooks[1].Emotion != "aspiration" {
		t.Fatalf("object option tags not canonicalized: %+v", d.SpokenHooks[1])
	}
	if d.SpokenHooks[0].Category != types.CategorySpokenHook {
		t.Fatalf("category=%q", d.SpokenHooks[0].Category)
	}
	if len(d.VisualHooks) != 1 || len(d.TextOverlays) != 1 || len(d.CTAs) != 1 {
		t.Fatalf("alternate keys not read: %+v", d)
	}
	if d.EmotionalDriver != "urgency" {
		t.Fatalf("driver=%q", d.EmotionalDriver)
	}
	if d.Script.Body != "b" || len(d.Script.Beats) != 2 || d.Script.Beats[1].Action != "Demo" {
		t.Fatalf("script=%+v", d.Script)
	}
}

func TestDecodeUnknownDriverIsBlank(t *testing.T) {
	d := Decode(`{"spoken_hook_options": ["a b c d"], "emotional_driver": "melancholy"}`)
	if d.EmotionalDriver != "" {
		t.Fatalf("driver=%q", d.EmotionalDriver)
	}
}

func TestPromptMentionsProductAndHistory(t *testing.T) {
	p := &catalog.Product{
		Name:     "Glow Serum",
		Category: "skincare",
		Benefits: datatypes.JSON([]byte(`["brighter skin","no sticky feel"]`)),
	}
	req := types.GenerationRequest{
		SubjectID: "p1",
		Tuning:    types.Tuning{Tone: "playful", HookFamilies: []string{"fear_of_missing_out"}},
		Reference: "Top reviews mention the smell.",
	}
	snap := types.SignalSnapshot{
		Signals: map[string]types.HistoricalSignal{
			"old hook": {Text: "Old hook", Rejections: 2},
			"big win":  {Text: "Big win", Winners: 1},
		},
		Exemplars:   []string{"Nobody tells you this about serums"},
		RecentHooks: []string{"Used yesterday"},
	}
	msgs := BuildMessages(NewPromptInput(p, req, snap))
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("messages=%+v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "spoken_hook_options") || !strings.Contains(msgs[0].Content, "curiosity_gap") {
		t.Fatalf("system prompt missing schema or families:\n%s", msgs[0].Content)
	}
	user := msgs[1].Content
	for _, want := range []string{
		"Product: Glow Serum",
		"Benefits: brighter skin; no sticky feel",
		"Tone: playful",
		"Focus on hook families: fomo",
		"- Nobody tells you this about serums",
		"- Big win",
		"- Old hook",
		"- Used yesterday",
		"Top reviews mention the smell.",
	} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
	if strings.Contains(user, "Audience:") {
		t.Fatalf("empty fields should not render:\n%s", user)
	}
}
