package session

import "fmt"

// Advance mounts the entry after the most recently displayed one, seeks the
// player to its start, and resumes playback if paused. A no-op at the tail:
// the display pointer keeps its value and no seek is issued.
func (s *Session) Advance() error {
	return s.navigate(func(cur string) string {
		return s.index.Next(cur)
	})
}

// Previous is symmetric to Advance using the prev link.
func (s *Session) Previous() error {
	return s.navigate(func(cur string) string {
		return s.index.Prev(cur)
	})
}

// Restart re-mounts the current entry and seeks back to its own start.
func (s *Session) Restart() error {
	return s.navigate(func(cur string) string {
		return cur
	})
}

// shared hotkey path: pick a target relative to the display pointer, arm the
// lockout, mount, then instruct the player. The lockout keeps the next clock
// ticks from overriding the target with a reading taken before the seek
// lands; it auto-clears after the window and a new hotkey re-arms it.
func (s *Session) navigate(pick func(cur string) string) error {
	s.mu.Lock()

	if s.index == nil || s.index.Len() == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no media loaded")
	}

	cur := s.displayedID
	if cur == "" {
		cur = s.index.First()
	}
	target := pick(cur)
	if target == "" {
		// tail/head reached
		s.mu.Unlock()
		return nil
	}

	e := s.index.Get(target)
	if e == nil {
		s.mu.Unlock()
		return nil
	}

	s.lockoutUntil = s.now().Add(s.lockout)
	s.mountLocked(target)
	start := e.StartTime
	player := s.player
	s.mu.Unlock()

	if player == nil {
		return nil
	}
	if err := player.Seek(start); err != nil {
		return fmt.Errorf("seek to %v failed: %w", start, err)
	}
	if paused, err := player.IsPaused(); err == nil && paused {
		if err := player.Play(); err != nil {
			return fmt.Errorf("resume failed: %w", err)
		}
	}
	return nil
}

// Locked reports whether the hotkey lockout is currently armed.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.lockoutUntil)
}
