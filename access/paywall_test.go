package access

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGate(t *testing.T) {
	Convey("Given a gate over a window ending at 60", t, func() {
		p := Policy{Window: FreeRange{End: 60}, Duration: 120}
		gate := NewGate(0)

		Convey("Samples around the end fire exactly once, on the first one past it", func() {
			var fired []float64
			for _, ts := range []float64{58.5, 59.9, 60.05, 60.2} {
				if gate.Observe(p, ts) {
					fired = append(fired, ts)
				}
			}
			So(fired, ShouldResemble, []float64{60.05})
			So(gate.State(), ShouldEqual, Shown)
		})

		Convey("A dismissed paywall stays closed until the playhead returns to the start", func() {
			So(gate.Observe(p, 60.05), ShouldBeTrue)
			gate.Dismiss()
			So(gate.State(), ShouldEqual, Dismissed)

			So(gate.Observe(p, 61), ShouldBeFalse)
			So(gate.Observe(p, 70), ShouldBeFalse)

			So(gate.Observe(p, 0.4), ShouldBeFalse)
			So(gate.State(), ShouldEqual, Hidden)

			So(gate.Observe(p, 60.1), ShouldBeTrue)
		})

		Convey("Dismiss has no effect while hidden", func() {
			gate.Dismiss()
			So(gate.State(), ShouldEqual, Hidden)
		})

		Convey("A viewer with access never trips it", func() {
			p.Viewer.IsPurchased = true
			So(gate.Observe(p, 61), ShouldBeFalse)
		})
	})
}
