// Package scoring assigns reproducible scores to candidate options from
// recorded outcomes, curated exemplars and text heuristics.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
)

// Weights are the fixed scoring constants. Scores start at Base and are
// clamped to [Min, Max].
type Weights struct {
	Base float64
	Min  float64
	Max  float64

	Approval    float64
	Posting     float64
	Winner      float64
	PositiveCap float64
	HalfLife    time.Duration

	Rejection    float64
	Underperform float64
	NegativeCap  float64

	Exemplar float64

	RecentRepeat float64

	BandMin        int
	BandMax        int
	BandBonus      float64
	OffBandPerWord float64
	OffBandCap     float64

	Banned    float64
	BannedCap float64

	Concrete float64

	// WinnerThreshold marks options worth promoting to the winners bank.
	WinnerThreshold float64
}

func DefaultWeights() Weights {
	return Weights{
		Base: 50,
		Min:  0,
		Max:  100,

		Approval:    4,
		Posting:     1.5,
		Winner:      10,
		PositiveCap: 30,
		HalfLife:    45 * 24 * time.Hour,

		Rejection:    8,
		Underperform: 3,
		NegativeCap:  40,

		Exemplar: 20,

		RecentRepeat: 20,

		BandMin:        4,
		BandMax:        15,
		BandBonus:      8,
		OffBandPerWord: 2,
		OffBandCap:     12,

		Banned:    15,
		BannedCap: 30,

		Concrete: 5,

		WinnerThreshold: 60,
	}
}

var digitRe = regexp.MustCompile(`[0-9]`)

type Scorer struct {
	w Weights
}

func New(w Weights) *Scorer {
	return &Scorer{w: w}
}

func NewDefault() *Scorer {
	return New(DefaultWeights())
}

func (s *Scorer) Weights() Weights { return s.w }

// Score is a pure function of option, snap and now.
func (s *Scorer) Score(opt types.CandidateOption, snap types.SignalSnapshot, now time.Time) types.ScoredOption {
	w := s.w
	key := taxonomy.NormalizeKey(opt.Text)
	toks := taxonomy.Tokens(opt.Text)
	score := w.Base
	var reasons []string

	if sig, ok := snap.Signal(key); ok {
		pos := float64(sig.Approvals)*w.Approval + float64(sig.Postings)*w.Posting + float64(sig.Winners)*w.Winner
		pos = math.Min(pos, w.PositiveCap)
		decay := s.decay(sig.LastApprovedAt, now)
		pos *= decay
		neg := math.Min(float64(sig.Rejections)*w.Rejection+float64(sig.Underperforms)*w.Underperform, w.NegativeCap)
		if pos != 0 {
			score += pos
			reasons = append(reasons, fmt.Sprintf("history_positive:+%.2f (approvals=%d postings=%d winners=%d decay=%.3f)",
				pos, sig.Approvals, sig.Postings, sig.Winners, decay))
		}
		if neg != 0 {
			score -= neg
			reasons = append(reasons, fmt.Sprintf("history_negative:-%.2f (rejections=%d underperforms=%d)",
				neg, sig.Rejections, sig.Underperforms))
		}
	}

	if best, ex := bestExemplar(toks, snap.Exemplars); best > 0 {
		bonus := best * w.Exemplar
		score += bonus
		reasons = append(reasons, fmt.Sprintf("exemplar_similarity:+%.2f (jaccard=%.3f with %q)", bonus, best, ex))
	}

	for _, recent := range snap.RecentHooks {
		if key != "" && taxonomy.NormalizeKey(recent) == key {
			score -= w.RecentRepeat
			reasons = append(reasons, fmt.Sprintf("recent_repeat:-%.2f", w.RecentRepeat))
			break
		}
	}

	words := taxonomy.WordCount(opt.Text)
	switch {
	case words >= w.BandMin && words <= w.BandMax:
		score += w.BandBonus
		reasons = append(reasons, fmt.Sprintf("length_in_band:+%.2f (words=%d)", w.BandBonus, words))
	default:
		off := w.BandMin - words
		if words > w.BandMax {
			off = words - w.BandMax
		}
		pen := math.Min(float64(off)*w.OffBandPerWord, w.OffBandCap)
		score -= pen
		reasons = append(reasons, fmt.Sprintf("length_off_band:-%.2f (words=%d)", pen, words))
	}

	var banned float64
	for _, p := range taxonomy.BannedPhrases() {
		if taxonomy.ContainsPhrase(key, p) {
			banned += w.Banned
			reasons = append(reasons, fmt.Sprintf("banned_phrase:%q", p))
		}
	}
	if banned > 0 {
		banned = math.Min(banned, w.BannedCap)
		score -= banned
		reasons = append(reasons, fmt.Sprintf("banned_total:-%.2f", banned))
	}

	if term, ok := concreteSubject(opt.Text, toks, snap.SubjectTerms); ok {
		score += w.Concrete
		reasons = append(reasons, fmt.Sprintf("concrete_subject:+%.2f (%s)", w.Concrete, term))
	}

	score = clamp(round2(score), w.Min, w.Max)
	return types.ScoredOption{
		Option:          opt,
		Score:           score,
		Reasons:         reasons,
		ClusterKey:      taxonomy.ClusterKey(opt.Family, opt.Text),
		WinnerCandidate: score >= w.WinnerThreshold,
	}
}

// ScoreAll scores opts against one snapshot and one now, preserving input order.
func (s *Scorer) ScoreAll(opts []types.CandidateOption, snap types.SignalSnapshot, now time.Time) []types.ScoredOption {
	out := make([]types.ScoredOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, s.Score(o, snap, now))
	}
	return out
}

// decay halves positive history every HalfLife since the last approval.
// Without a timestamp history is taken at face value.
func (s *Scorer) decay(last *time.Time, now time.Time) float64 {
	if last == nil || s.w.HalfLife <= 0 {
		return 1
	}
	age := now.Sub(*last)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(s.w.HalfLife))
}

func bestExemplar(toks []string, exemplars []string) (float64, string) {
	best, which := 0.0, ""
	for _, ex := range exemplars {
		j := taxonomy.Jaccard(toks, taxonomy.Tokens(ex))
		if j > best {
			best, which = j, ex
		}
	}
	return best, which
}

// concreteSubject reports whether text names a number or one of the subject's terms.
func concreteSubject(text string, toks []string, terms []string) (string, bool) {
	if digitRe.MatchString(text) {
		return "number", true
	}
	for _, term := range terms {
		for _, t := range taxonomy.Tokens(term) {
			if len(t) < 3 {
				continue
			}
			for _, tok := range toks {
				if tok == t {
					return t, true
				}
			}
		}
	}
	return "", false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
