package config

import (
	"testing"
	"time"

	"github.com/reelgate/reelgate/filesystem"
	"github.com/reelgate/reelgate/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("playback.seek_grace"), ShouldEqual, "playback_seek_grace")
		})

		Convey("Millis should convert millisecond settings", func() {
			_ = Setup()
			So(Millis(key.FeedMinViewTime), ShouldEqual, 200*time.Millisecond)
			So(Millis(key.PlaybackFrameInterval), ShouldEqual, 50*time.Millisecond)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlaybackSeekTolerance]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "REELGATE_PLAYBACK_SEEK_TOLERANCE")
		})

		Convey("Float values should report their type", func() {
			So(field.typeName(), ShouldEqual, "float")
		})
	})
}
