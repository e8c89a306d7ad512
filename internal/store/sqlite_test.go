package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/timeline"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "subvoc.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadSubtitles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entries := []timeline.Entry{
		{
			ID:        "55_0",
			StartTime: 0,
			EndTime:   4.5,
			Text:      "hola mundo",
			Tokens:    []timeline.Token{{Text: "hola"}, {Text: "mundo"}},
		},
		{
			ID:        "55_2",
			StartTime: 5,
			Text:      "adiós",
			Tokens:    []timeline.Token{{Text: "adiós"}},
		},
	}
	if err := s.SaveSubtitles(ctx, "55", "gen-1", entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, gen, err := s.LoadSubtitles(ctx, "55")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if gen != "gen-1" {
		t.Errorf("generation not round-tripped: got %q", gen)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "55_0" || got[1].ID != "55_2" {
		t.Errorf("unexpected ids: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].EndTime != 4.5 {
		t.Errorf("end time lost: got %v", got[0].EndTime)
	}
	if len(got[0].Tokens) != 2 || got[0].Tokens[1].Text != "mundo" {
		t.Errorf("tokens lost: %+v", got[0].Tokens)
	}
}

func TestSaveSubtitlesReplacesWholesale(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []timeline.Entry{{ID: "m_0", Text: "old", Tokens: []timeline.Token{{Text: "old"}}}}
	if err := s.SaveSubtitles(ctx, "m", "gen-old", first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second := []timeline.Entry{
		{ID: "m_0", Text: "new", Tokens: []timeline.Token{{Text: "new"}}},
		{ID: "m_1", Text: "more", Tokens: []timeline.Token{{Text: "more"}}},
	}
	if err := s.SaveSubtitles(ctx, "m", "gen-new", second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, gen, err := s.LoadSubtitles(ctx, "m")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 2 || got[0].Text != "new" {
		t.Errorf("expected wholesale replacement, got %+v", got)
	}
	if gen != "gen-new" {
		t.Errorf("re-import should replace the generation: got %q", gen)
	}
}

func TestAssignmentsFoldIntoLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entries := []timeline.Entry{
		{ID: "ep_0", Tokens: []timeline.Token{{Text: "a"}, {Text: "b"}, {Text: "c"}}},
	}
	if err := s.SaveSubtitles(ctx, "ep", "g", entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	m, err := s.CreateMeaning(ctx, Meaning{Word: "b", Label: "gloss", Definition: "def"})
	if err != nil {
		t.Fatalf("create meaning failed: %v", err)
	}

	if err := s.SaveMeaningAssignment(ctx, "ep_0", 1, m.ID); err != nil {
		t.Fatalf("assignment failed: %v", err)
	}
	// upsert: a second save for the same token replaces the first
	if err := s.SaveMeaningAssignment(ctx, "ep_0", 1, m.ID); err != nil {
		t.Fatalf("re-assignment failed: %v", err)
	}

	got, _, err := s.LoadSubtitles(ctx, "ep")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got[0].Tokens[1].MeaningID != m.ID {
		t.Errorf("assignment not folded in: %+v", got[0].Tokens)
	}
	if got[0].Tokens[0].MeaningID != 0 {
		t.Errorf("unassigned token gained a meaning: %+v", got[0].Tokens)
	}
}

// media ids that prefix each other must not see each other's assignments:
// the underscore in the id separator is a LIKE wildcard unless escaped
func TestAssignmentsScopedToMediaID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	short := []timeline.Entry{{ID: "5_0", Tokens: []timeline.Token{{Text: "a"}}}}
	long := []timeline.Entry{{ID: "55_0", Tokens: []timeline.Token{{Text: "b"}}}}
	if err := s.SaveSubtitles(ctx, "5", "g5", short); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveSubtitles(ctx, "55", "g55", long); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	m, err := s.CreateMeaning(ctx, Meaning{Word: "b", Label: "gloss"})
	if err != nil {
		t.Fatalf("create meaning failed: %v", err)
	}
	if err := s.SaveMeaningAssignment(ctx, "55_0", 0, m.ID); err != nil {
		t.Fatalf("assignment failed: %v", err)
	}

	got, _, err := s.LoadSubtitles(ctx, "5")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got[0].Tokens[0].MeaningID != 0 {
		t.Errorf("media 5 picked up media 55's assignment: %+v", got[0].Tokens)
	}

	got, _, err = s.LoadSubtitles(ctx, "55")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got[0].Tokens[0].MeaningID != m.ID {
		t.Errorf("media 55's own assignment lost: %+v", got[0].Tokens)
	}
}

func TestMeaningCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMeaning(ctx, Meaning{Word: "comer", Label: "to eat", Definition: "consume food", PartOfSpeech: "verb"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected assigned id")
	}

	m.Label = "to eat up"
	if err := s.UpdateMeaning(ctx, m); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := s.GetMeaning(ctx, m.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Label != "to eat up" {
		t.Errorf("update not visible: %+v", got)
	}

	list, err := s.ListMeanings(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: got %d meanings, err %v", len(list), err)
	}

	if err := s.DeleteMeaning(ctx, m.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetMeaning(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateMeaning(ctx, m); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of deleted meaning: expected ErrNotFound, got %v", err)
	}
}

func TestCandidateCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.CandidatesForWord(ctx, "casa")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no cached candidates, got %d", len(empty))
	}

	saved, err := s.SaveCandidates(ctx, "casa", []dictionary.Candidate{
		{Label: "house", Definition: "a dwelling", PartOfSpeech: "noun"},
		{Label: "home", Definition: "where one lives", PartOfSpeech: "noun"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved[0].ID == 0 || saved[1].ID == 0 {
		t.Fatal("expected ids assigned on save")
	}

	got, err := s.CandidatesForWord(ctx, "casa")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got) != 2 || got[0].Label != "house" || got[1].Label != "home" {
		t.Errorf("cache order lost: %+v", got)
	}

	// deleting a meaning also drops it from the word cache
	if err := s.DeleteMeaning(ctx, saved[0].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err = s.CandidatesForWord(ctx, "casa")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got) != 1 || got[0].Label != "home" {
		t.Errorf("expected deletion to reach the cache: %+v", got)
	}
}
