package timeline

import (
	"math/rand"
	"testing"
)

func buildThree(t *testing.T) *Index {
	t.Helper()
	idx, report := Build([]Entry{
		{ID: "55_0", StartTime: 0},
		{ID: "55_1", StartTime: 5},
		{ID: "55_2", StartTime: 10},
	})
	if len(report.Dropped) != 0 {
		t.Fatalf("unexpected dropped ids: %v", report.Dropped)
	}
	return idx
}

func TestResolve(t *testing.T) {
	idx := buildThree(t)

	tests := []struct {
		name   string
		anchor string
		time   float64
		want   string
	}{
		{name: "no anchor mid stream", anchor: "", time: 7, want: "55_1"},
		{name: "backward seek", anchor: "55_1", time: 4, want: "55_0"},
		{name: "anchor window holds", anchor: "55_1", time: 9.9, want: "55_1"},
		{name: "anchor boundary moves on", anchor: "55_1", time: 10, want: "55_2"},
		{name: "forward jump over entries", anchor: "55_0", time: 11, want: "55_2"},
		{name: "past every window", anchor: "55_0", time: 9000, want: "55_2"},
		{name: "before first window clamps", anchor: "55_2", time: -3, want: "55_0"},
		{name: "no anchor before first", anchor: "", time: -1, want: "55_0"},
		{name: "stale anchor treated as none", anchor: "99_4", time: 7, want: "55_1"},
		{name: "backward to exact start", anchor: "55_2", time: 5, want: "55_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(idx, tt.anchor, tt.time); got != tt.want {
				t.Errorf("Resolve(%q, %v) = %q, want %q", tt.anchor, tt.time, got, tt.want)
			}
		})
	}
}

func TestResolveEmptyIndex(t *testing.T) {
	idx, _ := Build(nil)
	if got := Resolve(idx, "", 5); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if got := Resolve(nil, "", 5); got != "" {
		t.Errorf("nil index: expected empty result, got %q", got)
	}
}

// monotonically increasing times never move the anchor backward
func TestResolveMonotonicAdvance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	entries := make([]Entry, 0, 40)
	start := 0.0
	for ord := 0; ord < 40; ord++ {
		if ord%7 == 3 {
			continue // leave ordinal holes
		}
		entries = append(entries, Entry{ID: EntryID("ep", ord), StartTime: start})
		start += 1 + rng.Float64()*4
	}
	idx, _ := Build(entries)

	ordinalOf := func(id string) int {
		_, ord, err := ParseID(id)
		if err != nil {
			t.Fatalf("bad id %q: %v", id, err)
		}
		return ord
	}

	anchor := ""
	clock := 0.0
	for step := 0; step < 500; step++ {
		clock += rng.Float64() * 2
		got := Resolve(idx, anchor, clock)
		if got == "" {
			t.Fatal("resolve returned nothing on a populated index")
		}
		if anchor != "" && ordinalOf(got) < ordinalOf(anchor) {
			t.Fatalf("anchor moved backward: %s -> %s at t=%v", anchor, got, clock)
		}
		// result window must contain the clock
		e := idx.Get(got)
		if clock >= e.StartTime {
			if nextID := idx.Next(got); nextID != "" && clock >= idx.Get(nextID).StartTime {
				t.Fatalf("resolved %s but %s already started at t=%v", got, nextID, clock)
			}
		}
		anchor = got
	}
}

// identical inputs always yield the identical result
func TestResolveDeterministic(t *testing.T) {
	idx := buildThree(t)
	for i := 0; i < 10; i++ {
		if a, b := Resolve(idx, "55_0", 7.3), Resolve(idx, "55_0", 7.3); a != b {
			t.Fatalf("nondeterministic resolve: %q vs %q", a, b)
		}
	}
}
