// Package player abstracts the media engines that render a feed item.
//
// The primary engine drives mpv over its JSON-IPC socket; a simulated engine
// runs on an injected clock for headless sessions and tests.
package player

import (
	"fmt"
	"sync"
)

// Status is the load state reported by an engine.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Buffering
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Buffering:
		return "buffering"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loaded reports whether media is loaded and positions are meaningful.
func (s Status) Loaded() bool {
	return s == Ready || s == Buffering
}

// StatusFunc receives status changes. err is set for Failed.
type StatusFunc func(status Status, err error)

// Engine is a single media playback surface.
// Pause and SetMuted must be safe to repeat.
type Engine interface {
	// Load opens url, paused and muted.
	Load(url, title string) error

	Resume() error
	Pause() error
	SetMuted(muted bool) error
	SetSpeed(rate float64) error

	// Seek moves to an absolute position in seconds. Completion is not guaranteed on return.
	Seek(seconds float64) error

	GetTimePos() (float64, error)
	GetDuration() (float64, error)

	Status() Status

	// OnStatus registers fn for status changes and returns a function removing it.
	OnStatus(fn StatusFunc) (cancel func())

	// FrameUpdates reports whether positions refresh every frame, which allows faster sampling.
	FrameUpdates() bool

	Close() error
}

// ChapterSetter is implemented by engines that can show chapter markers.
type ChapterSetter interface {
	SetChapters(chapters []map[string]any) error
}

// statusHub tracks the current status and fans changes out to listeners.
type statusHub struct {
	mu        sync.Mutex
	status    Status
	listeners map[int]StatusFunc
	next      int
}

func (h *statusHub) get() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *statusHub) subscribe(fn StatusFunc) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listeners == nil {
		h.listeners = make(map[int]StatusFunc)
	}
	id := h.next
	h.next++
	h.listeners[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// set stores status and notifies listeners outside the lock when it changed.
func (h *statusHub) set(status Status, err error) {
	h.mu.Lock()
	if h.status == status && status != Failed {
		h.mu.Unlock()
		return
	}
	h.status = status
	fns := make([]StatusFunc, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(status, err)
	}
}

// New returns the engine registered under name. The simulated engine plays
// for duration seconds.
func New(name string, duration float64) (Engine, error) {
	switch name {
	case "mpv":
		return NewMPV(), nil
	case "sim":
		return NewSim(nil, WithDuration(duration)), nil
	default:
		return nil, fmt.Errorf("unknown engine %q, available: mpv, sim", name)
	}
}
