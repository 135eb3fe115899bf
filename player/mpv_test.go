package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitize(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("http and https urls pass through", func() {
			u, err := sanitizeMediaTarget(" https://cdn.example.com/v.m3u8 ")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "https://cdn.example.com/v.m3u8")
		})

		Convey("Flags and other schemes are rejected", func() {
			for _, target := range []string{"", "--script=evil.lua", "file:///etc/passwd", "a\nb"} {
				_, err := sanitizeMediaTarget(target)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Local paths are cleaned", func() {
			u, err := sanitizeMediaTarget("videos/../videos/a.mp4")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "videos/a.mp4")
		})
	})

	Convey("Titles lose control characters", t, func() {
		So(sanitizeTitle(" Ep\t1\nPilot\x00 "), ShouldEqual, "Ep 1 Pilot")
	})
}

func TestMPVEvents(t *testing.T) {
	Convey("Given an mpv engine", t, func() {
		m := NewMPV()
		var seen []Status
		m.OnStatus(func(s Status, _ error) { seen = append(seen, s) })

		Convey("It starts idle and not running", func() {
			So(m.Status(), ShouldEqual, Idle)
			So(m.running(), ShouldBeFalse)
			_, err := m.GetTimePos()
			So(err, ShouldNotBeNil)
			So(m.Close(), ShouldBeNil)
		})

		Convey("Events drive its status", func() {
			m.handleEvent("start-file", nil)
			m.handleEvent("file-loaded", nil)
			m.handleEvent("paused-for-cache", true)
			m.handleEvent("paused-for-cache", false)
			So(seen, ShouldResemble, []Status{Loading, Ready, Buffering, Ready})
		})

		Convey("A seek buffers until it settles", func() {
			m.handleEvent("start-file", nil)
			m.handleEvent("file-loaded", nil)
			m.handleEvent("seeking", true)
			So(m.Status(), ShouldEqual, Buffering)

			m.handleEvent("paused-for-cache", true)
			m.handleEvent("seeking", false)
			So(m.Status(), ShouldEqual, Buffering)

			m.handleEvent("paused-for-cache", false)
			So(m.Status(), ShouldEqual, Ready)
			So(seen, ShouldResemble, []Status{Loading, Ready, Buffering, Ready})
		})

		Convey("A seek before the file loads leaves it loading", func() {
			m.handleEvent("start-file", nil)
			m.handleEvent("seeking", true)
			So(m.Status(), ShouldEqual, Loading)
		})

		Convey("Only the properties it maps are observed", func() {
			So(observed, ShouldResemble, []string{"seeking", "paused-for-cache"})
		})

		Convey("A failed file is reported", func() {
			var failure error
			m.OnStatus(func(s Status, err error) {
				if s == Failed {
					failure = err
				}
			})
			m.handleEvent("end-file", map[string]any{"reason": "error", "file_error": "loading failed"})
			So(m.Status(), ShouldEqual, Failed)
			So(failure.Error(), ShouldContainSubstring, "loading failed")
		})
	})
}

func TestEventParsing(t *testing.T) {
	Convey("Given an event listener", t, func() {
		var names []string
		el := NewEventListener("", func(name string, _ any) { names = append(names, name) })

		for _, line := range splitLines([]byte("{\"event\":\"property-change\",\"name\":\"pause\",\"data\":true}\n\n{\"event\":\"file-loaded\"}\nnot json\n")) {
			el.processEvent(line)
		}

		So(names, ShouldResemble, []string{"pause", "file-loaded"})
	})

	Convey("Responses skip interleaved events", t, func() {
		data, err := decodeResponse([]byte("{\"event\":\"seek\"}\n{\"data\":12.5,\"error\":\"success\"}\n"))
		So(err, ShouldBeNil)
		So(data, ShouldEqual, 12.5)

		_, err = decodeResponse([]byte(`{"error":"property unavailable"}`))
		So(err, ShouldNotBeNil)
	})
}
