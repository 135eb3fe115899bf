package playback

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/player"
)

// Clock samples the engine position on a fixed cadence until its context ends.
type Clock struct {
	clock    clockwork.Clock
	interval time.Duration
	engine   player.Engine
	sample   func(t float64)
}

// NewClock picks the frame cadence for engines with per-frame updates and the poll cadence otherwise.
func NewClock(clock clockwork.Clock, cfg Config, engine player.Engine, sample func(t float64)) *Clock {
	interval := cfg.PollInterval
	if engine.FrameUpdates() {
		interval = cfg.FrameInterval
	}

	return &Clock{
		clock:    clock,
		interval: interval,
		engine:   engine,
		sample:   sample,
	}
}

func (c *Clock) Interval() time.Duration {
	return c.interval
}

func (c *Clock) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t, err := c.engine.GetTimePos()
			if err != nil {
				continue
			}
			c.sample(t)
		}
	}
}
