package playback

import (
	"context"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
)

type EventKind int

const (
	StateChanged EventKind = iota + 1
	PaywallReached
	PaywallResolved
	SeekDenied
	WatchedThreshold
	EngineFailed
	SpeedChanged
)

// Event is emitted to the controller's observer outside of its locks.
type Event struct {
	Kind       EventKind
	Controller string
	ContentID  string

	Prev  State
	State State

	Route    access.Route
	Reason   access.Reason
	Fraction float64
	Speed    float64
	Err      error
}

// Observer receives controller events, possibly from several goroutines.
type Observer func(Event)

// WatchedFunc performs the side effects of crossing the watched threshold.
// It runs on its own goroutine and must honour ctx.
type WatchedFunc func(ctx context.Context, content backend.ContentSummary, fraction float64)
