package session

import "context"

// normalized hotkey action
type Action int

const (
	ActionNone Action = iota
	ActionAdvance
	ActionRestart
	ActionPrevious
	ActionDigit
)

// normalized hotkey event, produced by the input layer
type Event struct {
	Action Action
	Digit  int // 0-9, meaningful for ActionDigit only
}

// CandidateIndex maps a digit key to a candidate list index: 1-9 select
// index 0-8, 0 selects index 9.
func CandidateIndex(digit int) int {
	if digit == 0 {
		return 9
	}
	return digit - 1
}

// Handle dispatches a normalized hotkey event to the session.
func (s *Session) Handle(ctx context.Context, ev Event) error {
	switch ev.Action {
	case ActionAdvance:
		return s.Advance()
	case ActionRestart:
		return s.Restart()
	case ActionPrevious:
		return s.Previous()
	case ActionDigit:
		return s.SelectMeaningByDigit(ctx, ev.Digit)
	}
	return nil
}
