package taxonomy

import "strings"

// Hook families.
const (
	FamilyQuestion         = "question"
	FamilyBoldStatement    = "bold_statement"
	FamilyPOV              = "pov"
	FamilyCuriosityGap     = "curiosity_gap"
	FamilyControversy      = "controversy"
	FamilyRelatable        = "relatable"
	FamilyStoryStart       = "story_start"
	FamilyShockValue       = "shock_value"
	FamilySocialProof      = "social_proof"
	FamilyFOMO             = "fomo"
	FamilyPatternInterrupt = "pattern_interrupt"

	otherPrefix = "other:"
)

var families = []string{
	FamilyQuestion,
	FamilyBoldStatement,
	FamilyPOV,
	FamilyCuriosityGap,
	FamilyControversy,
	FamilyRelatable,
	FamilyStoryStart,
	FamilyShockValue,
	FamilySocialProof,
	FamilyFOMO,
	FamilyPatternInterrupt,
}

var familyAliases = map[string]string{
	"fear_of_missing_out": FamilyFOMO,
	"bold":                FamilyBoldStatement,
	"curiosity":           FamilyCuriosityGap,
	"story":               FamilyStoryStart,
	"shock":               FamilyShockValue,
	"interrupt":           FamilyPatternInterrupt,
}

type familyRule struct {
	family   string
	prefixes []string
	phrases  []string
}

// Rules are evaluated in order against the normalized text; first match wins.
var familyRules = []familyRule{
	{family: FamilyPOV, prefixes: []string{"pov"}},
	{family: FamilyPatternInterrupt, prefixes: []string{"stop", "wait", "dont scroll", "hold up"}, phrases: []string{"stop scrolling"}},
	{family: FamilyStoryStart, prefixes: []string{"so i", "i was", "i just", "story time", "the day", "last week", "yesterday"}},
	{family: FamilyFOMO, phrases: []string{"before its gone", "last chance", "selling out", "sold out", "dont miss", "limited", "while you can", "running out"}},
	{family: FamilySocialProof, phrases: []string{"everyone", "million", "viral", "reviews", "5 star", "five star", "obsessed with", "tiktok made me"}},
	{family: FamilyControversy, phrases: []string{"unpopular opinion", "hot take", "overrated", "nobody wants to hear", "im sorry but", "controversial"}},
	{family: FamilyShockValue, phrases: []string{"cant believe", "shocked", "insane", "crazy", "mind blown", "jaw dropped"}},
	{family: FamilyCuriosityGap, phrases: []string{"nobody talks", "nobody is talking", "nobody talking", "no one is talking", "no one talking", "nobody tells", "no one tells", "secret", "things nobody", "you wont believe", "what happened", "the reason"}},
	{family: FamilyRelatable, prefixes: []string{"me when", "if you", "anyone else", "tell me", "when you"}},
	{family: FamilyBoldStatement, phrases: []string{"best", "only", "never", "worst", "changed my", "game changer", "you need"}},
	{family: FamilyQuestion, prefixes: []string{"why", "what", "how", "who", "did", "do", "does", "is", "are", "can", "have", "would", "should"}},
}

func Families() []string {
	out := make([]string, len(families))
	copy(out, families)
	return out
}

// CanonicalFamily maps a model-supplied tag onto a known family, or "".
func CanonicalFamily(tag string) string {
	t := strings.ReplaceAll(NormalizeKey(tag), " ", "_")
	if t == "" {
		return ""
	}
	for _, f := range families {
		if f == t {
			return f
		}
	}
	return familyAliases[t]
}

// ClassifyFamily assigns a family by keyword rules. It returns "" when no rule fires.
func ClassifyFamily(text string) string {
	norm := NormalizeKey(text)
	if norm == "" {
		return ""
	}
	for _, r := range familyRules {
		for _, p := range r.prefixes {
			if norm == p || strings.HasPrefix(norm, p+" ") {
				return r.family
			}
		}
		for _, p := range r.phrases {
			if ContainsPhrase(norm, p) {
				return r.family
			}
		}
	}
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return FamilyQuestion
	}
	return ""
}

// ClusterKey is the diversity key of an option: the model's family tag when it
// names a known family, else the keyword classification, else "other:<first word>".
func ClusterKey(modelTag, text string) string {
	if f := CanonicalFamily(modelTag); f != "" {
		return f
	}
	if f := ClassifyFamily(text); f != "" {
		return f
	}
	toks := Tokens(text)
	if len(toks) == 0 {
		return otherPrefix
	}
	return otherPrefix + toks[0]
}

// FamilyOf strips the fallback prefix so callers get a family name or "other".
func FamilyOf(clusterKey string) string {
	if strings.HasPrefix(clusterKey, otherPrefix) {
		return "other"
	}
	return clusterKey
}

// IsEdgy marks families that lean on provocation.
func IsEdgy(family string) bool {
	switch family {
	case FamilyControversy, FamilyShockValue, FamilyPatternInterrupt:
		return true
	}
	return false
}
