package history

import (
	"testing"
	"time"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an episode of a series", t, func() {
		clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		now = func() time.Time { return clock }
		defer func() { now = time.Now }()

		episode := backend.ContentSummary{
			ID:            "ep-2",
			Title:         "Night Shift",
			CreatorName:   "mira",
			Duration:      120,
			Access:        backend.Access{IsPlayable: true, Window: access.FreeRange{Start: 0, End: 30}},
			Series:        mo.Some(backend.SeriesRef{ID: "series-1", Type: "paid"}),
			EpisodeNumber: mo.Some(2),
		}

		Convey("When it is saved", func() {
			So(Save(episode, 0.4), ShouldBeNil)

			Convey("Then it is logged under its content id", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				entry := saved["ep-2"]
				So(entry, ShouldNotBeNil)
				So(entry.SeriesID, ShouldEqual, "series-1")
				So(entry.Episode, ShouldEqual, 2)
				So(entry.Fraction, ShouldEqual, 0.4)
				So(entry.String(), ShouldEqual, "Night Shift #2 : 40%")
			})

			Convey("And a shorter re-watch keeps the furthest fraction", func() {
				clock = clock.Add(time.Hour)
				So(Save(episode, 0.1), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved["ep-2"].Fraction, ShouldEqual, 0.4)
				So(saved["ep-2"].WatchedAt, ShouldEqual, clock)
			})

			Convey("And the most recent entry lists first", func() {
				clock = clock.Add(time.Minute)
				So(Save(backend.ContentSummary{ID: "solo", Title: "Solo"}, 0.02), ShouldBeNil)

				entries, err := List()
				So(err, ShouldBeNil)
				ids := lo.Map(entries, func(e *Entry, _ int) string { return e.ContentID })
				So(ids[0], ShouldEqual, "solo")
				So(ids, ShouldContain, "ep-2")
				So(entries[0].String(), ShouldEqual, "Solo : 2%")
			})

			Convey("And it can be removed", func() {
				So(Remove("ep-2"), ShouldBeNil)
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldNotContainKey, "ep-2")
			})
		})
	})
}
