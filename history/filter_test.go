package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFilter(t *testing.T) {
	Convey("Given a few entries", t, func() {
		entries := []*Entry{
			{ContentID: "a", Title: "Night Shift", CreatorName: "mira"},
			{ContentID: "b", Title: "Morning Run", CreatorName: "oskar"},
			{ContentID: "c", Title: "Nightfall", CreatorName: "mira"},
		}

		ids := func(es []*Entry) []string {
			out := make([]string, len(es))
			for i, e := range es {
				out[i] = e.ContentID
			}
			return out
		}

		Convey("An empty query keeps them all in order", func() {
			So(ids(Filter(entries, "")), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("A title query ignores case", func() {
			So(ids(Filter(entries, "NIGHT")), ShouldContain, "a")
			So(ids(Filter(entries, "NIGHT")), ShouldContain, "c")
			So(ids(Filter(entries, "NIGHT")), ShouldNotContain, "b")
		})

		Convey("A creator query matches", func() {
			So(ids(Filter(entries, "oskar")), ShouldResemble, []string{"b"})
		})

		Convey("Nothing matches a stranger", func() {
			So(Filter(entries, "zzz"), ShouldBeEmpty)
		})
	})
}
