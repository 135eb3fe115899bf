package player

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrClosed is returned by a simulated engine after Close.
var ErrClosed = errors.New("engine closed")

const defaultSimDuration = 60

// SimOption configures a simulated engine.
type SimOption func(*Sim)

// WithDuration sets the media length in seconds.
func WithDuration(seconds float64) SimOption {
	return func(s *Sim) {
		if seconds > 0 {
			s.duration = seconds
		}
	}
}

// WithLoadError makes every Load fail with err.
func WithLoadError(err error) SimOption {
	return func(s *Sim) {
		s.loadErr = err
	}
}

// Sim is an Engine whose playhead advances with a clock. Playback loops at
// the end, as mpv does with loop-file.
type Sim struct {
	clock   clockwork.Clock
	status  statusHub
	loadErr error

	mu       sync.Mutex
	url      string
	duration float64
	playing  bool
	muted    bool
	speed    float64
	base     float64
	anchor   time.Time
	closed   bool
	seeks    []float64
	chapters []map[string]any
}

// NewSim returns a simulated engine on clock, or the real clock when nil.
func NewSim(clock clockwork.Clock, opts ...SimOption) *Sim {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Sim{
		clock:    clock,
		duration: defaultSimDuration,
		speed:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sim) Load(url, _ string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.url = url
	s.playing = false
	s.muted = true
	s.base = 0
	s.anchor = s.clock.Now()
	s.mu.Unlock()

	s.status.set(Loading, nil)

	if s.loadErr != nil {
		s.status.set(Failed, s.loadErr)
		return s.loadErr
	}
	if url == "" {
		err := errors.New("empty URL")
		s.status.set(Failed, err)
		return err
	}

	s.status.set(Ready, nil)
	return nil
}

// position must be called with mu held.
func (s *Sim) position() float64 {
	pos := s.base
	if s.playing {
		pos += s.clock.Since(s.anchor).Seconds() * s.speed
	}
	if pos >= s.duration {
		pos = math.Mod(pos, s.duration)
	}
	return pos
}

// rebase must be called with mu held.
func (s *Sim) rebase(pos float64) {
	s.base = pos
	s.anchor = s.clock.Now()
}

func (s *Sim) guard() error {
	if s.closed {
		return ErrClosed
	}
	if s.url == "" {
		return errors.New("nothing loaded")
	}
	return nil
}

func (s *Sim) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if !s.playing {
		s.rebase(s.position())
		s.playing = true
	}
	return nil
}

func (s *Sim) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.playing {
		s.rebase(s.position())
		s.playing = false
	}
	return nil
}

func (s *Sim) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.muted = muted
	return nil
}

func (s *Sim) SetSpeed(rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if rate <= 0 {
		return errors.New("speed must be positive")
	}
	s.rebase(s.position())
	s.speed = rate
	return nil
}

func (s *Sim) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	s.seeks = append(s.seeks, seconds)
	s.rebase(min(max(seconds, 0), s.duration))
	return nil
}

func (s *Sim) GetTimePos() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return 0, err
	}
	return s.position(), nil
}

func (s *Sim) GetDuration() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return 0, err
	}
	return s.duration, nil
}

func (s *Sim) Status() Status {
	return s.status.get()
}

func (s *Sim) OnStatus(fn StatusFunc) func() {
	return s.status.subscribe(fn)
}

func (s *Sim) FrameUpdates() bool {
	return true
}

func (s *Sim) SetChapters(chapters []map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chapters = chapters
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.playing = false
	s.mu.Unlock()

	s.status.set(Idle, nil)
	return nil
}

// Playing reports whether the playhead is advancing.
func (s *Sim) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Sim) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *Sim) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Seeks returns every requested seek target in order.
func (s *Sim) Seeks() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.seeks...)
}

func (s *Sim) Chapters() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters
}
