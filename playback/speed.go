package playback

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

// SpeedLevels are the playback rates a swipe cycles through.
var SpeedLevels = []float64{1, 1.25, 1.5, 2, 3}

// Speed is an index into SpeedLevels.
type Speed struct {
	index int
}

func (s Speed) Index() int {
	return s.index
}

func (s Speed) Rate() float64 {
	return SpeedLevels[s.index]
}

// Next returns the following level, wrapping to the first.
func (s Speed) Next() Speed {
	return Speed{index: (s.index + 1) % len(SpeedLevels)}
}

// Prev returns the preceding level, wrapping to the last.
func (s Speed) Prev() Speed {
	return Speed{index: (s.index - 1 + len(SpeedLevels)) % len(SpeedLevels)}
}

// Direction of a recognised swipe.
type Direction int

const (
	NoSwipe Direction = iota
	SwipeForward
	SwipeBack
)

// Swipe is a finished horizontal gesture.
type Swipe struct {
	// Velocity in points per second, positive to the right.
	Velocity float64
	// Distance in points, positive to the right.
	Distance float64
}

// SwipeDetector turns fast horizontal swipes into speed steps, at most one per cooldown.
type SwipeDetector struct {
	minVelocity float64
	minDistance float64
	limiter     *rate.Limiter
}

func NewSwipeDetector(cfg Config) *SwipeDetector {
	cfg = cfg.withDefaults()
	return &SwipeDetector{
		minVelocity: cfg.MinVelocity,
		minDistance: cfg.MinDistance,
		limiter:     rate.NewLimiter(rate.Every(cfg.GestureCooldown), 1),
	}
}

// Detect classifies swipe at now. A right swipe steps forward.
func (d *SwipeDetector) Detect(swipe Swipe, now time.Time) Direction {
	if math.Abs(swipe.Velocity) <= d.minVelocity || math.Abs(swipe.Distance) <= d.minDistance {
		return NoSwipe
	}

	if !d.limiter.AllowN(now, 1) {
		return NoSwipe
	}

	if swipe.Distance > 0 {
		return SwipeForward
	}
	return SwipeBack
}
