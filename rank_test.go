package main

import "testing"

func testEntries() []Entry {
	return []Entry{
		{ID: "a", Category: "Tech Apocalypse"},
		{ID: "b", Category: "Health Crisis"},
		{ID: "c", Category: "Tech Apocalypse"},
		{ID: "d", Category: "Economic Collapse"},
	}
}

func idsOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func assertOrder(t *testing.T, got []Entry, want ...string) {
	t.Helper()
	ids := idsOf(got)
	if len(ids) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, ids)
		}
	}
}

func TestRankEntriesEmptyWeightsKeepsOrder(t *testing.T) {
	got := RankEntries(testEntries(), WeightTable{})
	assertOrder(t, got, "a", "b", "c", "d")
}

func TestRankEntriesBoostsWeightedCategory(t *testing.T) {
	got := RankEntries(testEntries(), WeightTable{"Tech Apocalypse": 2})
	assertOrder(t, got, "a", "c", "b", "d")
}

func TestRankEntriesOrdersByWeightDescending(t *testing.T) {
	weights := WeightTable{
		"Health Crisis":     3,
		"Tech Apocalypse":   1,
		"Economic Collapse": 2,
	}
	got := RankEntries(testEntries(), weights)
	assertOrder(t, got, "b", "d", "a", "c")
}

func TestRankEntriesIsStableOnTies(t *testing.T) {
	weights := WeightTable{"Tech Apocalypse": 2, "Health Crisis": 2}
	got := RankEntries(testEntries(), weights)
	// Tied categories keep input order among themselves.
	assertOrder(t, got, "a", "b", "c", "d")
}

func TestRankEntriesIdempotent(t *testing.T) {
	weights := WeightTable{"Economic Collapse": 5, "Health Crisis": 1}
	once := RankEntries(testEntries(), weights)
	twice := RankEntries(once, weights)
	assertOrder(t, twice, idsOf(once)...)
}

func TestRankEntriesDoesNotMutateInput(t *testing.T) {
	in := testEntries()
	RankEntries(in, WeightTable{"Economic Collapse": 9})
	assertOrder(t, in, "a", "b", "c", "d")
}

func TestRankEntriesIsPermutation(t *testing.T) {
	in := testEntries()
	got := RankEntries(in, WeightTable{"Health Crisis": 1})
	if len(got) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(got))
	}
	seen := make(map[string]int)
	for _, e := range got {
		seen[e.ID]++
	}
	for _, e := range in {
		if seen[e.ID] != 1 {
			t.Fatalf("entry %q appears %d times in output", e.ID, seen[e.ID])
		}
	}
}

func TestRankEntriesVoteLiftsCategory(t *testing.T) {
	entries := []Entry{
		{ID: "a", Category: "Tech Apocalypse"},
		{ID: "b", Category: "Health Crisis"},
		{ID: "c", Category: "Tech Apocalypse"},
	}
	engine := NewPrefEngine(newMemPrefStore())

	got := RankEntries(entries, engine.Weights())
	assertOrder(t, got, "a", "b", "c")

	for i := 0; i < 2; i++ {
		if err := engine.RecordSignal("Tech Apocalypse"); err != nil {
			t.Fatalf("RecordSignal failed: %v", err)
		}
	}
	got = RankEntries(entries, engine.Weights())
	assertOrder(t, got, "a", "c", "b")
}

func TestRankEntriesMoreSignalsOutrankFewer(t *testing.T) {
	weights := WeightTable{}
	entries := testEntries()

	weights["Health Crisis"] = 1
	got := RankEntries(entries, weights)
	assertOrder(t, got, "b", "a", "c", "d")

	// Two more votes for Economic Collapse overtake it.
	weights["Economic Collapse"] = 2
	got = RankEntries(entries, weights)
	assertOrder(t, got, "d", "b", "a", "c")
}
