package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/timeline"
)

type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subtitles (
		media_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		start_time REAL NOT NULL,
		end_time REAL NOT NULL DEFAULT 0,
		text TEXT NOT NULL,
		tokens TEXT NOT NULL,
		generation TEXT NOT NULL,
		PRIMARY KEY (media_id, ordinal)
	);

	CREATE TABLE IF NOT EXISTS meanings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		word TEXT NOT NULL,
		label TEXT NOT NULL,
		definition TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS assignments (
		subtitle_id TEXT NOT NULL,
		token_index INTEGER NOT NULL,
		meaning_id INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (subtitle_id, token_index),
		FOREIGN KEY (meaning_id) REFERENCES meanings(id)
	);

	CREATE TABLE IF NOT EXISTS candidate_cache (
		word TEXT NOT NULL,
		meaning_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (word, meaning_id),
		FOREIGN KEY (meaning_id) REFERENCES meanings(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSubtitles replaces a media's stored entries wholesale under one
// transaction, stamped with the generation of the index build they came from.
func (s *SQLite) SaveSubtitles(ctx context.Context, mediaID, generation string, entries []timeline.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM subtitles WHERE media_id = ?", mediaID); err != nil {
		return err
	}

	for _, e := range entries {
		_, ord, err := timeline.ParseID(e.ID)
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.ID, err)
		}
		words := make([]string, len(e.Tokens))
		for i, tok := range e.Tokens {
			words[i] = tok.Text
		}
		tokens, err := json.Marshal(words)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO subtitles (media_id, ordinal, start_time, end_time, text, tokens, generation)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			mediaID, ord, e.StartTime, e.EndTime, e.Text, string(tokens), generation,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSubtitles returns a media's entries in ordinal order with any saved
// meaning assignments folded back into the tokens, plus the generation the
// entries were stored under.
func (s *SQLite) LoadSubtitles(ctx context.Context, mediaID string) ([]timeline.Entry, string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, start_time, end_time, text, tokens, generation
		FROM subtitles WHERE media_id = ? ORDER BY ordinal ASC`,
		mediaID,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var entries []timeline.Entry
	var generation string
	for rows.Next() {
		var (
			ord        int
			start, end float64
			text       string
			tokensJSON string
		)
		if err := rows.Scan(&ord, &start, &end, &text, &tokensJSON, &generation); err != nil {
			return nil, "", err
		}
		var words []string
		if err := json.Unmarshal([]byte(tokensJSON), &words); err != nil {
			return nil, "", fmt.Errorf("subtitle %s_%d: bad token payload: %w", mediaID, ord, err)
		}
		tokens := make([]timeline.Token, len(words))
		for i, w := range words {
			tokens[i] = timeline.Token{Text: w}
		}
		entries = append(entries, timeline.Entry{
			ID:        timeline.EntryID(mediaID, ord),
			StartTime: start,
			EndTime:   end,
			Text:      text,
			Tokens:    tokens,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if err := s.applyAssignments(ctx, mediaID, entries); err != nil {
		return nil, "", err
	}
	return entries, generation, nil
}

func (s *SQLite) applyAssignments(ctx context.Context, mediaID string, entries []timeline.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	byID := make(map[string]*timeline.Entry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subtitle_id, token_index, meaning_id
		FROM assignments WHERE subtitle_id LIKE ? ESCAPE '\'`,
		likePrefix(mediaID),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			subtitleID string
			tokenIndex int
			meaningID  int64
		)
		if err := rows.Scan(&subtitleID, &tokenIndex, &meaningID); err != nil {
			return err
		}
		e, ok := byID[subtitleID]
		if !ok || tokenIndex < 0 || tokenIndex >= len(e.Tokens) {
			continue // assignment outlived a re-import; ignore
		}
		e.Tokens[tokenIndex].MeaningID = meaningID
	}
	return rows.Err()
}

// builds the LIKE pattern matching ids of the form <mediaId>_<ordinal>.
// LIKE treats % and _ as wildcards, so without escaping, media "5" would
// also match every "55_..." row.
func likePrefix(mediaID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(mediaID)
	return escaped + `\_%`
}

// SaveMeaningAssignment upserts one token's meaning.
func (s *SQLite) SaveMeaningAssignment(ctx context.Context, subtitleID string, tokenIndex int, meaningID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (subtitle_id, token_index, meaning_id, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(subtitle_id, token_index)
		DO UPDATE SET meaning_id = ?, updated_at = CURRENT_TIMESTAMP`,
		subtitleID, tokenIndex, meaningID, meaningID,
	)
	return err
}

func (s *SQLite) CreateMeaning(ctx context.Context, m Meaning) (Meaning, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO meanings (word, label, definition, part_of_speech) VALUES (?, ?, ?, ?)",
		m.Word, m.Label, m.Definition, m.PartOfSpeech,
	)
	if err != nil {
		return Meaning{}, err
	}
	m.ID, err = res.LastInsertId()
	return m, err
}

func (s *SQLite) UpdateMeaning(ctx context.Context, m Meaning) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE meanings SET word = ?, label = ?, definition = ?, part_of_speech = ? WHERE id = ?",
		m.Word, m.Label, m.Definition, m.PartOfSpeech, m.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteMeaning(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM candidate_cache WHERE meaning_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM meanings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) GetMeaning(ctx context.Context, id int64) (Meaning, error) {
	var m Meaning
	err := s.db.QueryRowContext(ctx,
		"SELECT id, word, label, definition, part_of_speech, created_at FROM meanings WHERE id = ?",
		id,
	).Scan(&m.ID, &m.Word, &m.Label, &m.Definition, &m.PartOfSpeech, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return Meaning{}, ErrNotFound
	}
	return m, err
}

func (s *SQLite) ListMeanings(ctx context.Context) ([]Meaning, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, word, label, definition, part_of_speech, created_at FROM meanings ORDER BY id ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meanings := []Meaning{}
	for rows.Next() {
		var m Meaning
		if err := rows.Scan(&m.ID, &m.Word, &m.Label, &m.Definition, &m.PartOfSpeech, &m.CreatedAt); err != nil {
			return nil, err
		}
		meanings = append(meanings, m)
	}
	return meanings, rows.Err()
}

// CandidatesForWord returns the cached candidate list for a word in its
// original provider order; empty when the word has never been looked up.
func (s *SQLite) CandidatesForWord(ctx context.Context, word string) ([]dictionary.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.label, m.definition, m.part_of_speech
		FROM candidate_cache c JOIN meanings m ON m.id = c.meaning_id
		WHERE c.word = ? ORDER BY c.position ASC`,
		word,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []dictionary.Candidate
	for rows.Next() {
		var c dictionary.Candidate
		if err := rows.Scan(&c.ID, &c.Label, &c.Definition, &c.PartOfSpeech); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SaveCandidates stores a provider's candidate list for a word, creating
// meaning records and returning the list with ids filled in. An existing
// cache for the word is replaced.
func (s *SQLite) SaveCandidates(ctx context.Context, word string, list []dictionary.Candidate) ([]dictionary.Candidate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM candidate_cache WHERE word = ?", word); err != nil {
		return nil, err
	}

	out := make([]dictionary.Candidate, len(list))
	for i, c := range list {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO meanings (word, label, definition, part_of_speech) VALUES (?, ?, ?, ?)",
			word, c.Label, c.Definition, c.PartOfSpeech,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		c.ID = id
		out[i] = c
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO candidate_cache (word, meaning_id, position) VALUES (?, ?, ?)",
			word, id, i,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
