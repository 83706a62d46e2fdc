package taxonomy

import (
	"strings"
	"unicode"
)

// NormalizeKey folds case, drops apostrophes, turns every other non
// letter/digit rune into a space and collapses whitespace. Two option texts
// refer to the same historical record only when their keys are equal.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func Tokens(s string) []string {
	return strings.Fields(NormalizeKey(s))
}

func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Jaccard is |A∩B| / |A∪B| over token sets; 0 when both are empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap counts distinct tokens shared by a and b.
func Overlap(a, b []string) int {
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	seen := map[string]struct{}{}
	n := 0
	for _, t := range a {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := sb[t]; ok {
			n++
		}
	}
	return n
}

// ContainsPhrase reports whether the normalized phrase appears in the
// normalized text on word boundaries.
func ContainsPhrase(normText, phrase string) bool {
	p := NormalizeKey(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+normText+" ", " "+p+" ")
}

// FirstWords returns at most n whitespace-separated words of s.
func FirstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
