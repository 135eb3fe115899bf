package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/player"
	. "github.com/smartystreets/goconvey/convey"
)

// pollingEngine reports a fixed position and no frame updates.
type pollingEngine struct {
	*player.Sim
	at float64
}

func (e *pollingEngine) FrameUpdates() bool { return false }

func (e *pollingEngine) GetTimePos() (float64, error) { return e.at, nil }

func TestClock(t *testing.T) {
	Convey("Given the default cadences", t, func() {
		fake := clockwork.NewFakeClock()
		cfg := DefaultConfig()
		noop := func(float64) {}

		Convey("Engines with frame updates sample at the frame cadence", func() {
			c := NewClock(fake, cfg, player.NewSim(fake), noop)
			So(c.Interval(), ShouldEqual, 50*time.Millisecond)
		})

		Convey("Other engines are polled", func() {
			c := NewClock(fake, cfg, &pollingEngine{Sim: player.NewSim(fake)}, noop)
			So(c.Interval(), ShouldEqual, 100*time.Millisecond)
		})

		Convey("Running delivers one sample per tick until cancelled", func() {
			var (
				mu      sync.Mutex
				samples []float64
			)
			engine := &pollingEngine{Sim: player.NewSim(fake), at: 12.5}
			c := NewClock(fake, cfg, engine, func(t float64) {
				mu.Lock()
				samples = append(samples, t)
				mu.Unlock()
			})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				c.Run(ctx)
				close(done)
			}()

			fake.BlockUntil(1)
			count := func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(samples)
			}
			for i := 1; i <= 3; i++ {
				fake.Advance(100 * time.Millisecond)
				deadline := time.Now().Add(2 * time.Second)
				for count() < i && time.Now().Before(deadline) {
					time.Sleep(time.Millisecond)
				}
			}

			cancel()
			<-done

			mu.Lock()
			defer mu.Unlock()
			So(samples, ShouldResemble, []float64{12.5, 12.5, 12.5})
		})
	})
}
