package session

import (
	"context"
	"fmt"

	"github.com/tmaki/subvoc/internal/timeline"
)

// AssignMeaning tags a token with a meaning optimistically: the index is
// mutated and the UI notified synchronously, then persistence runs in the
// background so navigation never blocks on the network. A persistence
// failure is surfaced through OnPersistError and the local state is kept,
// not rolled back. Rapid repeated assignments to the same key are not
// single-flighted; late responses land last and the mutation is idempotent
// per key, so a race degrades to last-resolved-wins rather than corruption.
//
// In editing mode, once every token of the entry carries a meaning the
// selection is cleared and editing mode ends (no wraparound); otherwise the
// next untagged token becomes the selection.
func (s *Session) AssignMeaning(ctx context.Context, subtitleID string, tokenIndex int, meaningID int64) error {
	s.mu.Lock()

	if s.index == nil {
		s.mu.Unlock()
		return fmt.Errorf("no media loaded")
	}

	var outOfRange bool
	entry := s.index.Update(subtitleID, func(e *timeline.Entry) {
		if tokenIndex < 0 || tokenIndex >= len(e.Tokens) {
			outOfRange = true
			return
		}
		e.Tokens[tokenIndex].MeaningID = meaningID
	})
	if entry == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown subtitle id %q", subtitleID)
	}
	if outOfRange {
		s.mu.Unlock()
		return fmt.Errorf("token index %d out of range for %s", tokenIndex, subtitleID)
	}

	// UI sees the new state before the persistence call settles
	if s.cb.OnEntryChanged != nil {
		s.cb.OnEntryChanged(entry)
	}

	if s.editing {
		s.advanceSelectionLocked(entry)
	}

	store := s.store
	onErr := s.cb.OnPersistError
	s.mu.Unlock()

	if store != nil {
		go func() {
			if err := store.SaveMeaningAssignment(ctx, subtitleID, tokenIndex, meaningID); err != nil {
				if onErr != nil {
					onErr(fmt.Errorf("saving meaning for %s[%d]: %w", subtitleID, tokenIndex, err))
				}
			}
		}()
	}

	return nil
}

// moves the editing selection to the next untagged token, or ends editing
// mode when the entry is fully tagged; callers hold mu
func (s *Session) advanceSelectionLocked(entry *timeline.Entry) {
	next := entry.Untagged()
	if next < 0 {
		s.editing = false
		s.clearSelectionLocked()
		return
	}
	s.selectLocked(Key{SubtitleID: entry.ID, TokenIndex: next})
}

// SelectMeaningByDigit assigns the digit-mapped candidate to the current
// selection: digits 1-9 pick candidate index 0-8, digit 0 picks index 9.
// A digit beyond the cached candidate list, or with nothing selected or
// cached, is a no-op.
func (s *Session) SelectMeaningByDigit(ctx context.Context, digit int) error {
	if digit < 0 || digit > 9 {
		return nil
	}

	s.mu.Lock()
	if !s.hasSelection {
		s.mu.Unlock()
		return nil
	}
	key := s.selected
	s.mu.Unlock()

	list, ok := s.meanings.Get(key)
	if !ok {
		return nil
	}
	idx := CandidateIndex(digit)
	if idx >= len(list) {
		return nil
	}

	return s.AssignMeaning(ctx, key.SubtitleID, key.TokenIndex, list[idx].ID)
}
