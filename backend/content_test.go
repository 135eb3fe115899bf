package backend

import (
	"testing"

	"github.com/reelgate/reelgate/access"
	. "github.com/smartystreets/goconvey/convey"
)

const premiumPayload = `{
	"_id": "v1",
	"name": "Episode one",
	"videoUrl": "https://cdn.example.com/v1.m3u8",
	"duration": 300,
	"amount": 25,
	"created_by": {"_id": "c1", "username": "maker"},
	"series": {"_id": "s1", "type": "Paid", "price": 99},
	"access": {
		"isPlayable": true,
		"freeRange": {"start_time": 30, "display_till_time": 60},
		"isPurchased": false,
		"accessType": "paid",
		"price": 25
	}
}`

func TestParseContent(t *testing.T) {
	Convey("Given a premium payload", t, func() {
		c, err := ParseContent([]byte(premiumPayload))

		Convey("It is decoded into a summary", func() {
			So(err, ShouldBeNil)
			So(c.ID, ShouldEqual, "v1")
			So(c.CreatorID, ShouldEqual, "c1")
			So(c.Duration, ShouldEqual, 300)
			So(c.FreeWindow(), ShouldResemble, access.FreeRange{Start: 30, End: 60})
			So(c.Series.MustGet().ID, ShouldEqual, "s1")
		})

		Convey("The owner is recognised by creator id", func() {
			So(c.Viewer("c1").IsOwner, ShouldBeTrue)
			So(c.Viewer("someone").IsOwner, ShouldBeFalse)
			So(c.Viewer("").IsOwner, ShouldBeFalse)
		})

		Convey("The paywall routes to the series purchase", func() {
			So(access.RouteFor(c.Offer()).Kind, ShouldEqual, access.PurchaseSeries)
		})
	})

	Convey("The access type does not widen the free window", t, func() {
		c, err := ParseContent([]byte(`{"_id":"v","videoUrl":"u","duration":10,"created_by":{"_id":"c"},
			"access":{"accessType":"free","freeRange":{"start_time":2,"display_till_time":5}}}`))
		So(err, ShouldBeNil)
		So(c.Access.Type, ShouldEqual, AccessFree)
		So(c.FreeWindow(), ShouldResemble, access.FreeRange{Start: 2, End: 5})
	})

	Convey("Top-level preview bounds apply when the access block has no range", t, func() {
		c, err := ParseContent([]byte(`{"_id":"v","videoUrl":"u","duration":300,"created_by":{"_id":"c"},
			"start_time":0,"display_till_time":60,"access":{"accessType":"free"}}`))
		So(err, ShouldBeNil)
		So(c.FreeWindow(), ShouldResemble, access.FreeRange{Start: 0, End: 60})
	})

	Convey("A bare series id is accepted", t, func() {
		c, err := ParseContent([]byte(`{"_id":"v","videoUrl":"u","duration":10,"created_by":{"_id":"c"},"access":{},"series":"s9"}`))
		So(err, ShouldBeNil)
		So(c.Series.MustGet().ID, ShouldEqual, "s9")
	})

	Convey("Malformed payloads fail with a typed parse error", t, func() {
		cases := []struct {
			field   string
			payload string
		}{
			{"_id", `{"videoUrl":"u","duration":1,"created_by":{"_id":"c"},"access":{}}`},
			{"videoUrl", `{"_id":"v","duration":1,"created_by":{"_id":"c"},"access":{}}`},
			{"created_by._id", `{"_id":"v","videoUrl":"u","duration":1,"access":{}}`},
			{"access", `{"_id":"v","videoUrl":"u","duration":1,"created_by":{"_id":"c"}}`},
			{"duration", `{"_id":"v","videoUrl":"u","duration":-1,"created_by":{"_id":"c"},"access":{}}`},
			{"access.freeRange", `{"_id":"v","videoUrl":"u","duration":9,"created_by":{"_id":"c"},"access":{"freeRange":{"start_time":8,"display_till_time":4}}}`},
			{"access.freeRange.start_time", `{"_id":"v","videoUrl":"u","duration":9,"created_by":{"_id":"c"},"access":{"freeRange":{"start_time":-1}}}`},
		}

		for _, tc := range cases {
			_, err := ParseContent([]byte(tc.payload))
			So(IsParse(err), ShouldBeTrue)
			So(err.(*ParseError).Field, ShouldEqual, tc.field)
		}
	})
}
