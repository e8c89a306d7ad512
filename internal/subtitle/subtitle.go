package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmaki/subvoc/internal/timeline"
)

// cue as read from a subtitle file, before timeline ingestion
type Cue struct {
	Start float64 // seconds
	End   float64 // seconds
	Text  string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// Open parses a subtitle file based on its extension.
func Open(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return ParseSRT(file)
	case ".vtt":
		return ParseVTT(file)
	default:
		return nil, fmt.Errorf(
			"unsupported subtitle format %q: use .srt or .vtt",
			filepath.Ext(path),
		)
	}
}

// Entries converts parsed cues into tokenized timeline entries for one
// media. This is the single normalization boundary: downstream code only
// ever sees Token structs, never raw cue text shapes.
func Entries(mediaID string, cues []Cue) []timeline.Entry {
	entries := make([]timeline.Entry, len(cues))
	for i, cue := range cues {
		entries[i] = timeline.Entry{
			ID:        timeline.EntryID(mediaID, i),
			StartTime: cue.Start,
			EndTime:   cue.End,
			Text:      cue.Text,
			Tokens:    Tokenize(cue.Text),
		}
	}
	return entries
}
