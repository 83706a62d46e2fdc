package brief

import (
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/readjust"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
)

// Reasons attached to degraded results.
const (
	ReasonProviderTimeout = "provider_timeout"
	ReasonProviderError   = "provider_error"
	ReasonParseFailure    = "parse_failure"
	ReasonEmptyCandidates = "empty_candidates"
	ReasonWorkTimeout     = "work_timeout"

	StrategyFallback = "fallback"
)

// fallbackDecoded fills the hook formulas with the product name so a degraded
// result is still scored, diversified and schema-valid.
func fallbackDecoded(productName string) Decoded {
	texts, fams := taxonomy.HookFormulas(productName)
	d := Decoded{}
	seenVisual := map[string]bool{}
	seenCTA := map[string]bool{}
	for i, text := range texts {
		emotion := taxonomy.InferEmotion(text)
		d.SpokenHooks = append(d.SpokenHooks, types.CandidateOption{
			Text: text, Family: fams[i], Emotion: emotion, Category: types.CategorySpokenHook,
		})
		if v := taxonomy.VisualTemplate(fams[i]); !seenVisual[v] {
			seenVisual[v] = true
			d.VisualHooks = append(d.VisualHooks, types.CandidateOption{Text: v, Category: types.CategoryVisualHook})
		}
		d.TextOverlays = append(d.TextOverlays, types.CandidateOption{Text: readjust.CompressHook(text), Category: types.CategoryTextOverlay})
		if c := taxonomy.CTATemplate(emotion); !seenCTA[c] {
			seenCTA[c] = true
			d.CTAs = append(d.CTAs, types.CandidateOption{Text: c, Category: types.CategoryCTA})
		}
	}
	return d
}

func (u Usecases) fallback(productName string, tuning types.Tuning, snap types.SignalSnapshot, now time.Time) *types.GenerationResult {
	res := u.assemble(fallbackDecoded(productName), snap, now, tuning, productName)
	res.ParseStrategy = StrategyFallback
	return res
}
