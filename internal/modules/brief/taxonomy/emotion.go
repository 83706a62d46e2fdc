package taxonomy

// Emotional drivers.
const (
	EmotionUrgency     = "urgency"
	EmotionFrustration = "frustration"
	EmotionSurprise    = "surprise"
	EmotionHumor       = "humor"
	EmotionTrust       = "trust"
	EmotionAspiration  = "aspiration"
	EmotionCuriosity   = "curiosity"
)

var emotionRules = []struct {
	emotion string
	phrases []string
}{
	{EmotionUrgency, []string{"now", "today", "last chance", "hurry", "limited", "before its gone", "dont miss", "selling out", "while you can"}},
	{EmotionFrustration, []string{"tired of", "sick of", "hate", "struggle", "struggling", "annoying", "pain", "ruined", "fail", "frustrated"}},
	{EmotionSurprise, []string{"cant believe", "shocked", "insane", "crazy", "wow", "mind blown", "unexpected"}},
	{EmotionHumor, []string{"me when", "lol", "funny", "joke", "laugh", "tag a friend", "bestie"}},
	{EmotionTrust, []string{"reviews", "honest", "tested", "proof", "real", "everyone", "recommended", "dermatologist", "results"}},
	{EmotionAspiration, []string{"dream", "finally", "glow", "upgrade", "transform", "level up", "best", "confidence"}},
	{EmotionCuriosity, []string{"why", "secret", "nobody", "what", "how", "the reason", "things"}},
}

var ctaTemplates = map[string]string{
	EmotionUrgency:     "Grab yours before it sells out",
	EmotionFrustration: "Fix it today, link in bio",
	EmotionSurprise:    "See it for yourself, link in bio",
	EmotionHumor:       "Tag a friend who needs this",
	EmotionTrust:       "Read the reviews and try it yourself",
	EmotionAspiration:  "Start your upgrade today",
	EmotionCuriosity:   "Find out why at the link in bio",
}

func Emotions() []string {
	out := make([]string, 0, len(emotionRules))
	for _, r := range emotionRules {
		out = append(out, r.emotion)
	}
	return out
}

// CanonicalEmotion returns a known emotion for tag, or "".
func CanonicalEmotion(tag string) string {
	t := NormalizeKey(tag)
	for _, r := range emotionRules {
		if r.emotion == t {
			return t
		}
	}
	return ""
}

// InferEmotion classifies text by keyword; curiosity when nothing matches.
func InferEmotion(text string) string {
	norm := NormalizeKey(text)
	for _, r := range emotionRules {
		for _, p := range r.phrases {
			if ContainsPhrase(norm, p) {
				return r.emotion
			}
		}
	}
	return EmotionCuriosity
}

func CTATemplate(emotion string) string {
	if t, ok := ctaTemplates[CanonicalEmotion(emotion)]; ok {
		return t
	}
	return ctaTemplates[EmotionCuriosity]
}
