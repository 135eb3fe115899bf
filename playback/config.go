package playback

import (
	"time"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/config"
	"github.com/reelgate/reelgate/key"
	"github.com/spf13/viper"
)

// Config holds the timing and tolerance tunables of a controller.
type Config struct {
	FrameInterval time.Duration
	PollInterval  time.Duration

	SeekGrace     time.Duration
	SeekTolerance float64

	PaywallEpsilon float64
	RewindReset    float64

	// WatchedThreshold is the watched fraction (0..1) that triggers view and history side effects.
	WatchedThreshold float64

	MinVelocity     float64
	MinDistance     float64
	GestureCooldown time.Duration
}

func DefaultConfig() Config {
	return Config{
		FrameInterval:    50 * time.Millisecond,
		PollInterval:     100 * time.Millisecond,
		SeekGrace:        300 * time.Millisecond,
		SeekTolerance:    1,
		PaywallEpsilon:   access.DefaultEpsilon,
		RewindReset:      access.DefaultRewind,
		WatchedThreshold: 0.02,
		MinVelocity:      400,
		MinDistance:      40,
		GestureCooldown:  300 * time.Millisecond,
	}
}

// LoadConfig reads the tunables from viper.
func LoadConfig() Config {
	return Config{
		FrameInterval:    config.Millis(key.PlaybackFrameInterval),
		PollInterval:     config.Millis(key.PlaybackPollInterval),
		SeekGrace:        config.Millis(key.PlaybackSeekGrace),
		SeekTolerance:    viper.GetFloat64(key.PlaybackSeekTolerance),
		PaywallEpsilon:   viper.GetFloat64(key.PlaybackPaywallEpsilon),
		RewindReset:      viper.GetFloat64(key.PlaybackRewindReset),
		WatchedThreshold: viper.GetFloat64(key.PlaybackWatchedThreshold) / 100,
		MinVelocity:      viper.GetFloat64(key.GestureMinVelocity),
		MinDistance:      viper.GetFloat64(key.GestureMinDistance),
		GestureCooldown:  config.Millis(key.GestureCooldown),
	}.withDefaults()
}

// withDefaults replaces unset or invalid values.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.SeekGrace <= 0 {
		c.SeekGrace = d.SeekGrace
	}
	if c.SeekTolerance <= 0 {
		c.SeekTolerance = d.SeekTolerance
	}
	if c.PaywallEpsilon <= 0 {
		c.PaywallEpsilon = d.PaywallEpsilon
	}
	if c.RewindReset <= 0 {
		c.RewindReset = d.RewindReset
	}
	if c.WatchedThreshold <= 0 || c.WatchedThreshold > 1 {
		c.WatchedThreshold = d.WatchedThreshold
	}
	if c.MinVelocity <= 0 {
		c.MinVelocity = d.MinVelocity
	}
	if c.MinDistance <= 0 {
		c.MinDistance = d.MinDistance
	}
	if c.GestureCooldown <= 0 {
		c.GestureCooldown = d.GestureCooldown
	}
	return c
}
