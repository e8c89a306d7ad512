package store

import (
	"context"
	"errors"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/timeline"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// a stored meaning record; Candidate is its session-facing projection
type Meaning struct {
	ID           int64  `json:"id"`
	Word         string `json:"word"`
	Label        string `json:"label"`
	Definition   string `json:"definition"`
	PartOfSpeech string `json:"part_of_speech"`
	CreatedAt    string `json:"created_at"`
}

// Candidate converts the record to its session-facing shape.
func (m Meaning) Candidate() dictionary.Candidate {
	return dictionary.Candidate{
		ID:           m.ID,
		Label:        m.Label,
		Definition:   m.Definition,
		PartOfSpeech: m.PartOfSpeech,
	}
}

// Store is the persistence boundary the session core depends on.
type Store interface {
	LoadSubtitles(ctx context.Context, mediaID string) ([]timeline.Entry, string, error)
	SaveSubtitles(ctx context.Context, mediaID, generation string, entries []timeline.Entry) error
	SaveMeaningAssignment(ctx context.Context, subtitleID string, tokenIndex int, meaningID int64) error

	CreateMeaning(ctx context.Context, m Meaning) (Meaning, error)
	UpdateMeaning(ctx context.Context, m Meaning) error
	DeleteMeaning(ctx context.Context, id int64) error
	ListMeanings(ctx context.Context) ([]Meaning, error)

	CandidatesForWord(ctx context.Context, word string) ([]dictionary.Candidate, error)
	SaveCandidates(ctx context.Context, word string, list []dictionary.Candidate) ([]dictionary.Candidate, error)

	Close() error
}
