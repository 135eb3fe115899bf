package tui

import (
	"testing"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/playback"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func count(cells []cell, kind cell) int {
	return lo.Count(cells, kind)
}

func TestProgressCells(t *testing.T) {
	Convey("Given a 100 second video previewing 20s to 60s", t, func() {
		snap := playback.Snapshot{
			Duration:    100,
			CurrentTime: 30,
			DisplayTime: 30,
			Window:      access.FreeRange{Start: 20, End: 60},
		}

		Convey("A viewer without access sees both locked regions", func() {
			cells := progressCells(snap, 10)
			So(cells[:2], ShouldResemble, []cell{cellLocked, cellLocked})
			So(cells[6:], ShouldResemble, []cell{cellLocked, cellLocked, cellLocked, cellLocked})
			So(cells[2], ShouldEqual, cellPlayed)
			So(cells[3], ShouldEqual, cellHead)
			So(count(cells, cellHead), ShouldEqual, 1)
		})

		Convey("A buyer sees no lock", func() {
			snap.Viewer = access.Viewer{IsPurchased: true}
			cells := progressCells(snap, 10)
			So(count(cells, cellLocked), ShouldEqual, 0)
			So(cells[:3], ShouldResemble, []cell{cellPlayed, cellPlayed, cellPlayed})
		})

		Convey("A drag shows its target apart from the head", func() {
			snap.Dragging = true
			snap.DisplayTime = 50
			cells := progressCells(snap, 10)
			So(cells[3], ShouldEqual, cellHead)
			So(cells[5], ShouldEqual, cellTarget)
		})

		Convey("An unknown duration renders an empty bar", func() {
			snap.Duration = 0
			So(count(progressCells(snap, 10), cellRemaining), ShouldEqual, 10)
		})
	})
}

func TestPurchase(t *testing.T) {
	Convey("Given a bubble with an open paywall", t, func() {
		b := &statefulBubble{
			ledger:   access.NewLedger(),
			paywalls: make(map[string]access.Route),
		}

		episode := backend.ContentSummary{
			ID:        "ep-1",
			CreatorID: "creator",
			Series:    mo.Some(backend.SeriesRef{ID: "series-1", Type: "Paid"}),
		}
		scope := access.Scope{VideoID: "ep-2", SeriesID: "series-1", CreatorID: "creator"}

		Convey("Buying the series unlocks its other episodes", func() {
			b.paywalls["ep-1"] = access.Route{Kind: access.PurchaseSeries, TargetID: "series-1"}

			So(b.purchase("ep-1", episode)(), ShouldEqual, "Purchased series")
			So(b.ledger.Version(), ShouldEqual, 1)
			So(b.ledger.Resolve(access.Viewer{}, scope).HasFullAccess(), ShouldBeTrue)
		})

		Convey("Without a recorded paywall the route follows the offer", func() {
			video := backend.ContentSummary{ID: "v", CreatorID: "creator", Amount: 25}

			So(b.purchase("v", video)(), ShouldEqual, "Purchased video")
			So(b.ledger.Resolve(access.Viewer{}, access.Scope{VideoID: "v"}).IsPurchased, ShouldBeTrue)
		})
	})
}
