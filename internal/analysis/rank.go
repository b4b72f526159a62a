package analysis

import "sort"

// RankByRange returns covs sorted by descending simulated range, ties kept
// in input order.
func RankByRange(covs []Coverage) []Coverage {
	out := append([]Coverage(nil), covs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range > out[j].Range
	})
	return out
}
