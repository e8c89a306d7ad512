package player

import "context"

// Clock reports the playback position in seconds.
type Clock interface {
	CurrentTime(ctx context.Context) (float64, error)
}

// Control drives an external player.
type Control interface {
	Seek(seconds float64) error
	Play() error
	Pause() error
	IsPaused() (bool, error)
}
