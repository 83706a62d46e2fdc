package brief

import (
	"strings"

	"github.com/tidwall/gjson"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
)

// Decoded is the model's brief after extraction, before scoring.
type Decoded struct {
	SpokenHooks  []types.CandidateOption
	VisualHooks  []types.CandidateOption
	TextOverlays []types.CandidateOption
	CTAs         []types.CandidateOption

	EmotionalDriver string
	Script          types.Script
}

var categoryPaths = map[string][]string{
	types.CategorySpokenHook:  {"spoken_hook_options", "spoken_hooks", "hooks"},
	types.CategoryVisualHook:  {"visual_hook_options", "visual_hooks", "visuals"},
	types.CategoryTextOverlay: {"text_overlay_options", "text_overlays", "overlays"},
	types.CategoryCTA:         {"cta_options", "ctas"},
}

// Decode reads the brief fields out of an extracted JSON object. Options may be
// plain strings or {"text","family","emotion"} objects; blanks and normalized
// duplicates are dropped.
func Decode(jsonText string) Decoded {
	root := gjson.Parse(jsonText)
	d := Decoded{
		SpokenHooks:     decodeOptions(root, types.CategorySpokenHook),
		VisualHooks:     decodeOptions(root, types.CategoryVisualHook),
		TextOverlays:    decodeOptions(root, types.CategoryTextOverlay),
		CTAs:            decodeOptions(root, types.CategoryCTA),
		EmotionalDriver: taxonomy.CanonicalEmotion(firstString(root, "emotional_driver", "emotion")),
	}

	script := root.Get("script")
	d.Script = types.Script{
		Hook: strings.TrimSpace(script.Get("hook").String()),
		Body: strings.TrimSpace(firstString(script, "body", "script_body")),
		CTA:  strings.TrimSpace(script.Get("cta").String()),
	}
	if d.Script.Body == "" {
		d.Script.Body = strings.TrimSpace(root.Get("script_body").String())
	}
	beats := script.Get("scenes")
	if !beats.Exists() {
		beats = script.Get("beats")
	}
	beats.ForEach(func(_, v gjson.Result) bool {
		b := types.ScriptBeat{}
		if v.Type == gjson.String {
			b.Action = strings.TrimSpace(v.String())
		} else {
			b.Duration = strings.TrimSpace(v.Get("duration").String())
			b.Action = strings.TrimSpace(firstString(v, "action", "description"))
		}
		if b.Action != "" {
			d.Script.Beats = append(d.Script.Beats, b)
		}
		return true
	})
	return d
}

func decodeOptions(root gjson.Result, category string) []types.CandidateOption {
	var arr gjson.Result
	for _, p := range categoryPaths[category] {
		if v := root.Get(p); v.IsArray() {
			arr = v
			break
		}
	}
	var out []types.CandidateOption
	seen := map[string]bool{}
	arr.ForEach(func(_, v gjson.Result) bool {
		opt := types.CandidateOption{Category: category}
		switch {
		case v.Type == gjson.String:
			opt.Text = v.String()
		case v.IsObject():
			opt.Text = firstString(v, "text", "hook", "line", "value")
			opt.Family = taxonomy.CanonicalFamily(firstString(v, "family", "type"))
			opt.Emotion = taxonomy.CanonicalEmotion(v.Get("emotion").String())
		default:
			return true
		}
		opt.Text = strings.TrimSpace(opt.Text)
		key := taxonomy.NormalizeKey(opt.Text)
		if key == "" || seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, opt)
		return true
	})
	return out
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := strings.TrimSpace(v.Get(p).String()); s != "" {
			return s
		}
	}
	return ""
}
