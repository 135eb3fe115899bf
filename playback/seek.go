package playback

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/player"
)

// seekAttempts is the first seek plus one retry on mismatch.
const seekAttempts = 2

// Seeker commands a seek and verifies the engine reports the new position.
type Seeker struct {
	clock     clockwork.Clock
	grace     time.Duration
	tolerance float64
}

func NewSeeker(clock clockwork.Clock, grace time.Duration, tolerance float64) Seeker {
	return Seeker{clock: clock, grace: grace, tolerance: tolerance}
}

// Seek moves engine to target and returns the position it settled on. A
// mismatch beyond the tolerance is retried once; after that the reported
// position is accepted.
func (s Seeker) Seek(ctx context.Context, engine player.Engine, target float64) (float64, error) {
	var pos float64

	for attempt := 1; attempt <= seekAttempts; attempt++ {
		if err := engine.Seek(target); err != nil {
			return 0, fmt.Errorf("seek to %.2f: %w", target, err)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.clock.After(s.grace):
		}

		var err error
		pos, err = engine.GetTimePos()
		if err != nil {
			return 0, fmt.Errorf("verify seek: %w", err)
		}

		if math.Abs(pos-target) <= s.tolerance {
			return pos, nil
		}

		log.With("target", target).With("position", pos).Debugf("seek mismatch on attempt %d", attempt)
	}

	return pos, nil
}
