package main

import "sort"

// RankEntries orders entries by descending category weight. Pure function:
// the input slice is left untouched. Entries with equal score keep their
// relative input order (stable sort), so a table of all zeros returns the
// input order unchanged.
func RankEntries(entries []Entry, weights WeightTable) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return weights[out[i].Category] > weights[out[j].Category]
	})
	return out
}
