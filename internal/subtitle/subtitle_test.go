package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleVTT = `WEBVTT

NOTE this block is metadata
and should be skipped

STYLE
::cue { color: white }

1
00:00:01.000 --> 00:00:04.000
Hola <i>mundo</i>

00:05.500 --> 00:08.250
segunda linea,
con dos renglones
`

const sampleSRT = `1
00:00:01,000 --> 00:00:04,000
Hola mundo.

2
00:00:05,500 --> 00:00:08,250
segunda linea
`

func TestParseVTT(t *testing.T) {
	cues, err := ParseVTT(strings.NewReader(sampleVTT))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	if cues[0].Start != 1.0 || cues[0].End != 4.0 {
		t.Errorf("cue 0 times: got %v-%v", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "Hola <i>mundo</i>" {
		t.Errorf("cue 0 text: %q", cues[0].Text)
	}

	// short timestamps without an hours component
	if cues[1].Start != 5.5 || cues[1].End != 8.25 {
		t.Errorf("cue 1 times: got %v-%v", cues[1].Start, cues[1].End)
	}
	if cues[1].Text != "segunda linea,\ncon dos renglones" {
		t.Errorf("cue 1 text: %q", cues[1].Text)
	}
}

func TestParseVTTWithBOM(t *testing.T) {
	input := "\ufeff" + "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhola\n"
	cues, err := ParseVTT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "hola" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestParseSRT(t *testing.T) {
	cues, err := ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 1.0 || cues[0].End != 4.0 {
		t.Errorf("cue 0 times: got %v-%v", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "Hola mundo." {
		t.Errorf("cue 0 text: %q", cues[0].Text)
	}
	if cues[1].Start != 5.5 || cues[1].End != 8.25 {
		t.Errorf("cue 1 times: got %v-%v", cues[1].Start, cues[1].End)
	}
}

func TestOpenDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "episode.srt")
	if err := os.WriteFile(srtPath, []byte(sampleSRT), 0o644); err != nil {
		t.Fatal(err)
	}
	cues, err := Open(srtPath)
	if err != nil {
		t.Fatalf("open srt failed: %v", err)
	}
	if len(cues) != 2 {
		t.Errorf("expected 2 cues, got %d", len(cues))
	}

	vttPath := filepath.Join(dir, "episode.VTT")
	if err := os.WriteFile(vttPath, []byte(sampleVTT), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(vttPath); err != nil {
		t.Errorf("open vtt (uppercase ext) failed: %v", err)
	}

	if _, err := Open(filepath.Join(dir, "episode.ass")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Open(filepath.Join(dir, "missing.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEntries(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 2, Text: "Hola, mundo!"},
		{Start: 5, End: 8, Text: "<i>que tal</i>"},
	}
	entries := Entries("55", cues)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "55_0" || entries[1].ID != "55_1" {
		t.Errorf("entry ids: %q, %q", entries[0].ID, entries[1].ID)
	}
	if entries[0].StartTime != 0 || entries[0].EndTime != 2 {
		t.Errorf("entry 0 times: %v-%v", entries[0].StartTime, entries[0].EndTime)
	}

	words := func(e int) []string {
		var out []string
		for _, tok := range entries[e].Tokens {
			out = append(out, tok.Text)
		}
		return out
	}
	if got := words(0); len(got) != 2 || got[0] != "Hola" || got[1] != "mundo" {
		t.Errorf("entry 0 tokens: %v", got)
	}
	if got := words(1); len(got) != 2 || got[0] != "que" || got[1] != "tal" {
		t.Errorf("entry 1 tokens: %v", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "plain", in: "Hola mundo", want: []string{"Hola", "mundo"}},
		{name: "punctuation stripped", in: "¡Hola, mundo!", want: []string{"Hola", "mundo"}},
		{name: "markup dropped", in: "<i>Hola</i> <c.yellow>mundo</c>", want: []string{"Hola", "mundo"}},
		{name: "pure punctuation token", in: "si — no", want: []string{"si", "no"}},
		{name: "multiline", in: "una\nlinea", want: []string{"una", "linea"}},
		{name: "empty", in: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.in)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens, want %d (%+v)", len(toks), len(tt.want), toks)
			}
			for i, w := range tt.want {
				if toks[i].Text != w {
					t.Errorf("token %d: got %q, want %q", i, toks[i].Text, w)
				}
			}
		})
	}
}
