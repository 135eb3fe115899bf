package playback

import (
	"testing"
	"time"

	"github.com/reelgate/reelgate/config"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/reelgate/reelgate/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestLoadConfig(t *testing.T) {
	Convey("Given the registered defaults", t, func() {
		filesystem.SetMemMapFs()
		So(config.Setup(), ShouldBeNil)

		Convey("They load as the built-in defaults", func() {
			So(LoadConfig(), ShouldResemble, DefaultConfig())
		})

		Convey("Overrides are picked up and invalid values fall back", func() {
			viper.Set(key.PlaybackSeekGrace, 150)
			viper.Set(key.PlaybackWatchedThreshold, 500)
			defer viper.Set(key.PlaybackSeekGrace, 300)
			defer viper.Set(key.PlaybackWatchedThreshold, 2)

			cfg := LoadConfig()
			So(cfg.SeekGrace, ShouldEqual, 150*time.Millisecond)
			So(cfg.WatchedThreshold, ShouldEqual, 0.02)
		})
	})
}
