package access

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ledger := NewLedger()
		scope := Scope{VideoID: "v1", SeriesID: "s1", CreatorID: "c1"}
		policy := Policy{Window: FreeRange{Start: 30, End: 60}, Duration: 300}

		var seen []int
		cancel := ledger.Subscribe(func(v int) { seen = append(seen, v) })

		Convey("A signal without any flag is ignored", func() {
			So(ledger.Publish(Signal{VideoID: "v1"}), ShouldBeFalse)
			So(ledger.Version(), ShouldEqual, 0)
			So(seen, ShouldBeEmpty)
		})

		Convey("A video purchase bumps the version and unlocks the content", func() {
			So(policy.CanSeekTo(200).Allowed, ShouldBeFalse)

			So(ledger.Publish(Signal{IsVideoPurchased: true, VideoID: "v1"}), ShouldBeTrue)
			So(seen, ShouldResemble, []int{1})

			policy.Viewer = ledger.Resolve(policy.Viewer, scope)
			So(policy.Viewer.IsPurchased, ShouldBeTrue)
			So(policy.Viewer.Version, ShouldEqual, 1)
			for ts := 0.0; ts <= 300; ts += 10 {
				So(policy.CanSeekTo(ts).Allowed, ShouldBeTrue)
			}

			Convey("And later signals never revoke it", func() {
				ledger.Publish(Signal{IsPurchasedSeries: true, SeriesID: "other"})
				policy.Viewer = ledger.Resolve(policy.Viewer, scope)
				So(policy.Viewer.IsPurchased, ShouldBeTrue)
				So(policy.Viewer.Version, ShouldEqual, 2)
			})
		})

		Convey("Pass purchases unlock every video of the creator", func() {
			ledger.Publish(Signal{IsPurchasedCommunityPass: true, CreatorID: "c1"})
			v := ledger.Resolve(Viewer{}, Scope{VideoID: "v9", CreatorID: "c1"})
			So(v.IsPurchasedCreatorPass, ShouldBeTrue)
			So(v.HasFullAccess(), ShouldBeTrue)
		})

		Convey("Grants are scoped to their ids", func() {
			ledger.Publish(Signal{IsVideoPurchased: true, VideoID: "v2"})
			v := ledger.Resolve(Viewer{}, scope)
			So(v.HasFullAccess(), ShouldBeFalse)
			So(v.Version, ShouldEqual, 1)
		})

		Convey("Cancelled subscribers are not notified", func() {
			cancel()
			ledger.Publish(Signal{IsPurchasedPass: true, CreatorID: "c1"})
			So(seen, ShouldBeEmpty)
		})
	})
}

func TestRouteFor(t *testing.T) {
	Convey("RouteFor", t, func() {
		Convey("A paid series wins", func() {
			r := RouteFor(Offer{VideoID: "v", SeriesID: "s", SeriesType: "Paid", Amount: 20, CreatorID: "c"})
			So(r, ShouldResemble, Route{Kind: PurchaseSeries, TargetID: "s"})
		})

		Convey("A free series falls through to the video price", func() {
			r := RouteFor(Offer{VideoID: "v", SeriesID: "s", SeriesType: "Free", Price: 5, CreatorID: "c"})
			So(r, ShouldResemble, Route{Kind: PurchaseVideo, TargetID: "v"})
		})

		Convey("Unpriced content sells the creator pass", func() {
			r := RouteFor(Offer{VideoID: "v", CreatorID: "c"})
			So(r, ShouldResemble, Route{Kind: PurchaseCreatorPass, TargetID: "c"})
		})
	})
}
