package session

import (
	"time"

	"github.com/Agampodige/MathDrill/internal/level"
)

// countdownMsg fires when the feedback countdown identified by Token ends.
type countdownMsg struct {
	SessionID string
	Token     uint64
}

// clockTickMsg is sent every second to refresh the stopwatch and check the
// level deadline.
type clockTickMsg struct {
	SessionID string
	At        time.Time
}

// levelLoadedMsg is sent when a level requested by id has been fetched.
type levelLoadedMsg struct {
	Level level.Level
	Err   error
}

// levelCompletedMsg is sent when a finished level run has been rated.
type levelCompletedMsg struct {
	Result level.Result
	Err    error
}
