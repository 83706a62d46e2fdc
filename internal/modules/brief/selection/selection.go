// Package selection orders scored options so that every family is
// represented before any family repeats.
package selection

import (
	"sort"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
)

type ranked struct {
	opt  types.ScoredOption
	norm string
	idx  int
}

// Order returns every input option: first the best option of each family in
// score order, then the remaining options in score order. Ties break by
// normalized text, then input position. The input slice is not modified.
func Order(scored []types.ScoredOption) []types.ScoredOption {
	rs := make([]ranked, len(scored))
	for i, s := range scored {
		rs[i] = ranked{opt: s, norm: taxonomy.NormalizeKey(s.Option.Text), idx: i}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.opt.Score != b.opt.Score {
			return a.opt.Score > b.opt.Score
		}
		if a.norm != b.norm {
			return a.norm < b.norm
		}
		return a.idx < b.idx
	})

	out := make([]types.ScoredOption, 0, len(rs))
	seen := make(map[string]struct{}, len(rs))
	rest := make([]types.ScoredOption, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r.opt.ClusterKey]; ok {
			rest = append(rest, r.opt)
			continue
		}
		seen[r.opt.ClusterKey] = struct{}{}
		out = append(out, r.opt)
	}
	return append(out, rest...)
}

// Select truncates Order to max entries. max <= 0 keeps everything.
func Select(scored []types.ScoredOption, max int) []types.ScoredOption {
	ordered := Order(scored)
	if max > 0 && len(ordered) > max {
		return ordered[:max]
	}
	return ordered
}

// DistinctFamilies counts distinct cluster keys in scored.
func DistinctFamilies(scored []types.ScoredOption) int {
	seen := map[string]struct{}{}
	for _, s := range scored {
		seen[s.ClusterKey] = struct{}{}
	}
	return len(seen)
}
