package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/timeline"
)

// player control surface consumed by navigation
type Player interface {
	Seek(seconds float64) error
	Play() error
	Pause() error
	IsPaused() (bool, error)
}

// persistence surface consumed by the optimistic coordinator
type Persister interface {
	SaveMeaningAssignment(ctx context.Context, subtitleID string, tokenIndex int, meaningID int64) error
}

// resolves a word to its candidate meanings (dictionary provider or a
// store-backed cache around one)
type Fetcher func(ctx context.Context, word string) ([]dictionary.Candidate, error)

// Callbacks push state changes to the UI. The session never pulls from the
// renderer. Callbacks run with the session lock held (OnPersistError runs on
// the persistence goroutine); they must hand off rather than call back in.
type Callbacks struct {
	OnEntryChanged     func(entry *timeline.Entry)
	OnSelectionChanged func(subtitleID string, tokenIndex int) // tokenIndex -1 means cleared
	OnMeaningsChanged  func(key Key, list []dictionary.Candidate)
	OnPersistError     func(err error)
}

// DefaultLockout is how long clock-driven transitions stay suppressed after a
// hotkey navigation, so a stale clock reading taken before the seek lands
// cannot override the just-issued target.
const DefaultLockout = 1000 * time.Millisecond

type Options struct {
	Lockout time.Duration    // 0 means DefaultLockout
	Now     func() time.Time // nil means time.Now, injectable for tests
}

// Session owns one media's navigation state: the subtitle index, the clock
// resolver anchor, the hotkey display pointer, the token-meaning cache, and
// the current editing selection. It replaces the free-floating module state
// of earlier revisions; every operation goes through the handle.
type Session struct {
	mu sync.Mutex

	mediaID string
	index   *timeline.Index
	report  timeline.BuildReport

	player Player
	store  Persister
	lookup Fetcher
	cb     Callbacks

	// clock resolver anchor, advanced only by Tick
	anchorID string
	// most recently mounted entry; hotkeys navigate relative to this,
	// independent of the anchor
	displayedID string

	lockout      time.Duration
	lockoutUntil time.Time
	now          func() time.Time

	meanings *MeaningCache

	editing      bool
	selected     Key
	hasSelection bool
}

func New(player Player, store Persister, lookup Fetcher, cb Callbacks, opts Options) *Session {
	if opts.Lockout <= 0 {
		opts.Lockout = DefaultLockout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		player:   player,
		store:    store,
		lookup:   lookup,
		cb:       cb,
		lockout:  opts.Lockout,
		now:      opts.Now,
		meanings: NewMeaningCache(),
	}
}

// Init atomically replaces the session's index with a fresh build for one
// media. Old structures, pointers, and cached meanings are discarded; no
// caller ever observes a half-built index.
func (s *Session) Init(mediaID string, entries []timeline.Entry) timeline.BuildReport {
	idx, report := timeline.Build(entries)
	return s.adopt(mediaID, idx, report)
}

// Restore is Init for a persisted timeline: the index is rebuilt under the
// generation the entries were stored with, so ids resolve against the same
// generation they were written under. An empty generation falls back to a
// fresh build.
func (s *Session) Restore(mediaID, generation string, entries []timeline.Entry) timeline.BuildReport {
	if generation == "" {
		return s.Init(mediaID, entries)
	}
	idx, report := timeline.BuildGeneration(generation, entries)
	return s.adopt(mediaID, idx, report)
}

func (s *Session) adopt(mediaID string, idx *timeline.Index, report timeline.BuildReport) timeline.BuildReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mediaID = mediaID
	s.index = idx
	s.report = report
	s.anchorID = ""
	s.displayedID = ""
	s.lockoutUntil = time.Time{}
	s.editing = false
	s.hasSelection = false
	s.selected = Key{}
	s.meanings.InvalidateAll()

	return report
}

// Reset drops all media state, returning the session to its initial shape.
func (s *Session) Reset() {
	s.Init("", nil)
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
}

// Tick feeds a clock reading to the resolver. If the resolved entry differs
// from the one on screen it is mounted and the UI notified — unless a hotkey
// lockout is armed, in which case the result is computed but vetoed so the
// hotkey's target survives stale clock readings.
func (s *Session) Tick(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil || s.index.Len() == 0 {
		return
	}

	resolved := timeline.Resolve(s.index, s.anchorID, t)
	if resolved == "" {
		return
	}
	if s.now().Before(s.lockoutUntil) {
		return
	}

	s.anchorID = resolved
	if resolved != s.displayedID {
		s.mountLocked(resolved)
	}
}

// MediaID returns the media the session was initialized for.
func (s *Session) MediaID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediaID
}

// Generation identifies the index build the session currently serves; entry
// ids are only meaningful within it.
func (s *Session) Generation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ""
	}
	return s.index.Generation()
}

// Displayed returns the entry currently on screen, or nil.
func (s *Session) Displayed() *timeline.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil || s.displayedID == "" {
		return nil
	}
	return s.index.Get(s.displayedID)
}

// Selection returns the selected token key, if any.
func (s *Session) Selection() (Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelection
}

// Editing reports whether the session is in editing mode.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Report returns the build findings from the last Init.
func (s *Session) Report() timeline.BuildReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Entry re-reads an entry from the index; callers must not retain it across
// mutations of other fields they also read.
func (s *Session) Entry(id string) *timeline.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	return s.index.Get(id)
}

// mounts an entry as the displayed one and notifies the UI; callers hold mu
func (s *Session) mountLocked(id string) {
	e := s.index.Get(id)
	if e == nil {
		return
	}
	s.displayedID = id
	if s.hasSelection && s.selected.SubtitleID != id {
		s.clearSelectionLocked()
	}
	if s.cb.OnEntryChanged != nil {
		s.cb.OnEntryChanged(e)
	}
}

func (s *Session) clearSelectionLocked() {
	id := s.selected.SubtitleID
	s.hasSelection = false
	s.selected = Key{}
	if s.cb.OnSelectionChanged != nil {
		s.cb.OnSelectionChanged(id, -1)
	}
}

func (s *Session) selectLocked(key Key) {
	s.selected = key
	s.hasSelection = true
	s.editing = true
	if s.cb.OnSelectionChanged != nil {
		s.cb.OnSelectionChanged(key.SubtitleID, key.TokenIndex)
	}
}

// SelectToken puts the session in editing mode with the given token selected.
func (s *Session) SelectToken(subtitleID string, tokenIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return fmt.Errorf("no media loaded")
	}
	e := s.index.Get(subtitleID)
	if e == nil {
		return fmt.Errorf("unknown subtitle id %q", subtitleID)
	}
	if tokenIndex < 0 || tokenIndex >= len(e.Tokens) {
		return fmt.Errorf("token index %d out of range for %s", tokenIndex, subtitleID)
	}
	s.selectLocked(Key{SubtitleID: subtitleID, TokenIndex: tokenIndex})
	return nil
}

// FetchCandidates resolves the candidate list for the current selection,
// cache-first, and notifies the UI. This is the session's only suspension
// point for dictionary lookups.
func (s *Session) FetchCandidates(ctx context.Context) ([]dictionary.Candidate, error) {
	s.mu.Lock()
	if !s.hasSelection || s.index == nil {
		s.mu.Unlock()
		return nil, nil
	}
	key := s.selected
	e := s.index.Get(key.SubtitleID)
	if e == nil || key.TokenIndex >= len(e.Tokens) {
		s.mu.Unlock()
		return nil, nil
	}
	word := e.Tokens[key.TokenIndex].Text
	lookup := s.lookup
	s.mu.Unlock()

	if lookup == nil {
		return nil, nil
	}

	list, err := s.meanings.FetchOrGet(ctx, key, word, lookup)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cb.OnMeaningsChanged != nil {
		s.cb.OnMeaningsChanged(key, list)
	}
	s.mu.Unlock()
	return list, nil
}

// Meanings exposes the per-token candidate cache.
func (s *Session) Meanings() *MeaningCache {
	return s.meanings
}
