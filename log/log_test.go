package log

import (
	"bytes"
	"testing"

	"github.com/reelgate/reelgate/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestEntry(t *testing.T) {
	Convey("Given a buffer-backed logger", t, func() {
		var buf bytes.Buffer
		viper.Set(key.LogsJson, false)
		viper.Set(key.LogsLevel, "debug")
		configure(&buf)

		Convey("When logging is disabled", func() {
			enabled = false
			With("content", "v1").Infof("ignored")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When logging is enabled", func() {
			enabled = true
			defer func() { enabled = false }()

			With("content", "v1").With("state", "playing").Infof("activated")

			Convey("Then the fields are written", func() {
				So(buf.String(), ShouldContainSubstring, "content=v1")
				So(buf.String(), ShouldContainSubstring, "state=playing")
				So(buf.String(), ShouldContainSubstring, "activated")
			})
		})
	})
}
