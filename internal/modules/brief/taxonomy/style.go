package taxonomy

import (
	"strings"
)

type visualStyle struct {
	cues     []string
	template string
}

var visualStyles = map[string]visualStyle{
	FamilyQuestion:         {cues: []string{"eyebrow", "puzzled", "shrug", "camera"}, template: "Creator raises an eyebrow at the camera while holding up the product"},
	FamilyBoldStatement:    {cues: []string{"slam", "point", "pointing", "bold"}, template: "Creator points straight at the lens, product slammed onto the counter"},
	FamilyPOV:              {cues: []string{"pov", "first", "handheld", "eyes"}, template: "First-person handheld shot reaching for the product"},
	FamilyCuriosityGap:     {cues: []string{"reveal", "covered", "hidden", "unbox", "box"}, template: "Product half hidden behind a hand, slow reveal on the beat"},
	FamilyControversy:      {cues: []string{"shake", "shaking", "cross", "arms"}, template: "Creator crosses arms and shakes head before turning to the product"},
	FamilyRelatable:        {cues: []string{"messy", "everyday", "couch", "morning", "sigh"}, template: "Everyday messy-room moment, creator sighs and grabs the product"},
	FamilyStoryStart:       {cues: []string{"walking", "walk", "car", "talking", "sitting"}, template: "Creator talking to camera while walking, product in hand"},
	FamilyShockValue:       {cues: []string{"drop", "jaw", "gasp", "zoom"}, template: "Snap zoom on the creator's jaw-drop reaction to the product"},
	FamilySocialProof:      {cues: []string{"comments", "reviews", "screenshot", "stars", "crowd"}, template: "Green-screen over a wall of five-star reviews, creator pointing at them"},
	FamilyFOMO:             {cues: []string{"stock", "cart", "empty", "shelf", "timer"}, template: "Almost-empty shelf with one product left, hand grabs it fast"},
	FamilyPatternInterrupt: {cues: []string{"hand", "block", "lens", "cover", "snap"}, template: "Hand slaps over the lens, pulls away to reveal the product"},
}

var defaultVisual = visualStyle{template: "Close-up of the product in use with natural light"}

// VisualCues are the words that mark a visual direction as suiting family.
func VisualCues(family string) []string {
	return append([]string(nil), visualStyles[family].cues...)
}

func VisualTemplate(family string) string {
	if v, ok := visualStyles[family]; ok {
		return v.template
	}
	return defaultVisual.template
}

// MatchesVisualCues reports whether text mentions any cue of family.
func MatchesVisualCues(family, text string) bool {
	cues := visualStyles[family].cues
	if len(cues) == 0 {
		return false
	}
	return Overlap(Tokens(text), cues) > 0
}

type editingStyle struct {
	pace, music, textStyle string
}

var editingStyles = map[string]editingStyle{
	"product_showcase":    {"Fast cuts", "Upbeat/trending", "Bold, large"},
	"ugc_testimonial":     {"Smooth transitions", "Calm/authentic", "Minimal, clean"},
	"skit_comedy":         {"Quick cuts, jump cuts", "Trending/funny", "Bold with effects"},
	"voiceover_explainer": {"B-roll with text", "Background chill", "Text-heavy, educational"},
	"face_on_camera":      {"Medium pace", "Subtle background", "CTA overlay bold"},
}

var defaultEditing = editingStyle{"Medium", "Trending", "Standard"}

func ContentTypes() []string {
	return []string{"product_showcase", "ugc_testimonial", "skit_comedy", "voiceover_explainer", "face_on_camera"}
}

// EditingStyle returns pace, music and text style for a content type.
func EditingStyle(contentType string) (pace, music, textStyle string) {
	key := strings.ReplaceAll(NormalizeKey(contentType), " ", "_")
	s, ok := editingStyles[key]
	if !ok {
		s = defaultEditing
	}
	return s.pace, s.music, s.textStyle
}

var bannedPhrases = []string{
	"hey guys",
	"check this out",
	"in this video",
	"dont forget to like",
	"game changer",
	"you guys",
	"hi everyone",
	"welcome back",
	"smash that",
}

// BannedPhrases are generic openers and filler that weaken a hook.
func BannedPhrases() []string {
	return append([]string(nil), bannedPhrases...)
}

// hookFormulas are fill-in templates used when the model gives nothing usable.
var hookFormulas = []struct {
	family string
	text   string
}{
	{FamilyPatternInterrupt, "Stop scrolling if you need a better {product}"},
	{FamilyPOV, "POV: you finally found a {product} that actually works"},
	{FamilyCuriosityGap, "Why is nobody talking about this {product}?"},
	{FamilyCuriosityGap, "3 things nobody tells you about {product}"},
	{FamilyRelatable, "If you have tried every {product} out there, watch this"},
	{FamilySocialProof, "Everyone keeps asking about my {product}"},
}

// HookFormulas renders the fallback hook templates for product, with family tags.
func HookFormulas(product string) (texts []string, fams []string) {
	name := strings.TrimSpace(product)
	if name == "" {
		name = "product"
	}
	for _, f := range hookFormulas {
		texts = append(texts, strings.ReplaceAll(f.text, "{product}", name))
		fams = append(fams, f.family)
	}
	return texts, fams
}
