package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/player"
	. "github.com/smartystreets/goconvey/convey"
)

type seekResult struct {
	pos float64
	err error
}

func runSeek(ctx context.Context, clock clockwork.FakeClock, seeker Seeker, engine player.Engine, target float64) seekResult {
	done := make(chan seekResult, 1)
	go func() {
		pos, err := seeker.Seek(ctx, engine, target)
		done <- seekResult{pos, err}
	}()

	for {
		select {
		case r := <-done:
			return r
		default:
			clock.Advance(10 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestSeeker(t *testing.T) {
	Convey("Given a seeker with a one second tolerance", t, func() {
		clock := clockwork.NewFakeClock()
		seeker := NewSeeker(clock, 300*time.Millisecond, 1)
		engine := newRecordingEngine(clock, 300)
		So(engine.Load("https://cdn/v", "v"), ShouldBeNil)

		Convey("A seek that lands is not repeated", func() {
			r := runSeek(context.Background(), clock, seeker, engine, 30)
			So(r.err, ShouldBeNil)
			So(r.pos, ShouldAlmostEqual, 30)
			So(engine.Seeks(), ShouldResemble, []float64{30})
		})

		Convey("A mismatch is retried once", func() {
			engine.misses = 1
			r := runSeek(context.Background(), clock, seeker, engine, 30)
			So(r.pos, ShouldAlmostEqual, 30)
			So(engine.Seeks(), ShouldResemble, []float64{30, 30})
		})

		Convey("A persistent mismatch is accepted after the retry", func() {
			engine.misses = 10
			r := runSeek(context.Background(), clock, seeker, engine, 30)
			So(r.err, ShouldBeNil)
			So(r.pos, ShouldAlmostEqual, 25)
			So(engine.Seeks(), ShouldResemble, []float64{30, 30})
		})

		Convey("Cancellation stops the wait", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := seeker.Seek(ctx, engine, 30)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
