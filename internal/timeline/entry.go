package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// single subtitle cue in a media's timeline
type Entry struct {
	// unique within one index generation, format <mediaId>_<ordinal>
	ID        string
	StartTime float64 // seconds
	EndTime   float64 // seconds, 0 when the source carried no end time
	Text      string  // display fallback when tokens are empty
	Tokens    []Token
}

// single display token within an entry
type Token struct {
	Text string
	// id of the assigned meaning, 0 when untagged. Once assigned it stays
	// authoritative until reassigned or the whole index is rebuilt.
	MeaningID int64
}

// Ordinal returns the entry's position within its media's sequence.
func (e *Entry) Ordinal() (int, error) {
	_, ord, err := ParseID(e.ID)
	return ord, err
}

// Untagged returns the index of the first token without a meaning, or -1.
func (e *Entry) Untagged() int {
	for i, tok := range e.Tokens {
		if tok.MeaningID == 0 {
			return i
		}
	}
	return -1
}

// ParseID splits an entry id into media id and ordinal. The ordinal is the
// base-10 integer after the final underscore.
func ParseID(id string) (mediaID string, ordinal int, err error) {
	sep := strings.LastIndex(id, "_")
	if sep <= 0 || sep == len(id)-1 {
		return "", 0, fmt.Errorf("malformed entry id %q: want <mediaId>_<ordinal>", id)
	}
	ordinal, err = strconv.Atoi(id[sep+1:])
	if err != nil || ordinal < 0 {
		return "", 0, fmt.Errorf("malformed entry id %q: ordinal suffix is not a non-negative integer", id)
	}
	return id[:sep], ordinal, nil
}

// EntryID builds the canonical <mediaId>_<ordinal> id.
func EntryID(mediaID string, ordinal int) string {
	return fmt.Sprintf("%s_%d", mediaID, ordinal)
}
