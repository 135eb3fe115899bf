package util

import (
	"testing"

	"github.com/reelgate/reelgate/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "video", "videos"), ShouldEqual, "1 video")
		So(Quantify(6, "video", "videos"), ShouldEqual, "6 videos")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("paused"), ShouldEqual, "Paused")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 3), ShouldEqual, 3)
		So(Clamp(-1.5, 0, 3), ShouldEqual, 0)
		So(Clamp(0.25, 0, 1), ShouldEqual, 0.25)
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Timestamp", t, func() {
		So(Timestamp(0), ShouldEqual, "0:00")
		So(Timestamp(59.9), ShouldEqual, "0:59")
		So(Timestamp(125), ShouldEqual, "2:05")
		So(Timestamp(3725), ShouldEqual, "1:02:05")
		So(Timestamp(-3), ShouldEqual, "0:00")
	})
}

func TestDelete(t *testing.T) {
	Convey("Given an in-memory file", t, func() {
		filesystem.SetMemMapFs()
		So(filesystem.API().WriteFile("/tmp/x/a.txt", []byte("a"), 0o644), ShouldBeNil)

		Convey("Deleting the directory removes it", func() {
			So(Delete("/tmp/x"), ShouldBeNil)
			exists, _ := filesystem.API().Exists("/tmp/x/a.txt")
			So(exists, ShouldBeFalse)
		})
	})
}
