package timeline

import (
	"sort"

	"github.com/google/uuid"
)

// prev/next links for one entry, derived from ordinal-sorted order
type adjacency struct {
	prevID string // "" at the head
	nextID string // "" at the tail
}

// Index is the authoritative in-memory map of one media's subtitle entries
// plus their prev/next structure. It is rebuilt wholesale per media load;
// Update is the only sanctioned mutation path, so every reader that needs an
// entry must fetch it from the index rather than keeping a private copy.
type Index struct {
	generation string
	entries    map[string]*Entry
	adj        map[string]adjacency
	order      []string // ids sorted by ordinal ascending
}

// describes a hole in the ordinal sequence
type Gap struct {
	AfterID  string // entry before the hole
	BeforeID string // entry after the hole
	Missing  int    // count of absent ordinals between them
}

// non-fatal findings from a build
type BuildReport struct {
	Generation string   // id of the build the findings describe
	Dropped    []string // ids excluded for malformed or duplicate ids
	Gaps       []Gap    // ordinal holes tolerated by the adjacency
}

// Build constructs an index from entries under a freshly minted generation.
// Entries whose id does not parse as <mediaId>_<ordinal>, or whose id
// duplicates an earlier one, are excluded and reported rather than failing the
// build. Adjacency links consecutive entries in ordinal-sorted order, so
// missing ordinals simply link across the hole.
func Build(entries []Entry) (*Index, BuildReport) {
	return BuildGeneration(uuid.NewString(), entries)
}

// BuildGeneration is Build under a caller-supplied generation id, used when
// rehydrating a persisted timeline so entry ids stay scoped to the generation
// they were stored under.
func BuildGeneration(generation string, entries []Entry) (*Index, BuildReport) {
	report := BuildReport{Generation: generation}

	type keyed struct {
		id      string
		ordinal int
	}

	idx := &Index{
		generation: generation,
		entries:    make(map[string]*Entry, len(entries)),
		adj:        make(map[string]adjacency, len(entries)),
	}

	var sorted []keyed
	for i := range entries {
		e := entries[i]
		_, ord, err := ParseID(e.ID)
		if err != nil {
			report.Dropped = append(report.Dropped, e.ID)
			continue
		}
		if _, dup := idx.entries[e.ID]; dup {
			report.Dropped = append(report.Dropped, e.ID)
			continue
		}
		stored := e
		idx.entries[e.ID] = &stored
		sorted = append(sorted, keyed{id: e.ID, ordinal: ord})
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ordinal < sorted[j].ordinal
	})

	idx.order = make([]string, len(sorted))
	for i, k := range sorted {
		idx.order[i] = k.id
		var a adjacency
		if i > 0 {
			a.prevID = sorted[i-1].id
			if hole := k.ordinal - sorted[i-1].ordinal - 1; hole > 0 {
				report.Gaps = append(report.Gaps, Gap{
					AfterID:  sorted[i-1].id,
					BeforeID: k.id,
					Missing:  hole,
				})
			}
		}
		if i < len(sorted)-1 {
			a.nextID = sorted[i+1].id
		}
		idx.adj[k.id] = a
	}

	return idx, report
}

// Generation identifies one build of the index; ids are only unique within it.
func (x *Index) Generation() string {
	return x.generation
}

func (x *Index) Len() int {
	return len(x.order)
}

// Get returns the stored entry, or nil if the id is unknown.
func (x *Index) Get(id string) *Entry {
	return x.entries[id]
}

// Next returns the id of the nearest following entry, or "" at the tail.
func (x *Index) Next(id string) string {
	return x.adj[id].nextID
}

// Prev returns the id of the nearest preceding entry, or "" at the head.
func (x *Index) Prev(id string) string {
	return x.adj[id].prevID
}

// First returns the id with no predecessor, or "" for an empty index.
func (x *Index) First() string {
	if len(x.order) == 0 {
		return ""
	}
	return x.order[0]
}

// Last returns the id with no successor, or "" for an empty index.
func (x *Index) Last() string {
	if len(x.order) == 0 {
		return ""
	}
	return x.order[len(x.order)-1]
}

// IDs returns the ids in ordinal order. The slice is shared; do not mutate.
func (x *Index) IDs() []string {
	return x.order
}

// Update mutates the stored entry in place and returns it. This is the only
// sanctioned path for changing token or meaning state: a read immediately
// after Update observes the mutation, and no detached copy can go stale.
func (x *Index) Update(id string, mutate func(*Entry)) *Entry {
	e := x.entries[id]
	if e == nil {
		return nil
	}
	mutate(e)
	return e
}
