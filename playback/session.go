package playback

import (
	"github.com/reelgate/reelgate/access"
	"github.com/samber/mo"
)

// Session is the per-content playback state of one mounted player.
type Session struct {
	ContentID string

	CurrentTime float64
	Dragging    bool
	DragTarget  mo.Option[float64]

	Ready     bool
	Buffering bool
	Failed    bool

	InitialSeekDone bool
	ActivatedBefore bool

	gate        *access.Gate
	seekPending bool
	seeking     bool
	paywalled   bool
	held        bool
	milestone   bool
}

func newSession(contentID string, rewind float64) *Session {
	return &Session{
		ContentID:  contentID,
		DragTarget: mo.None[float64](),
		gate:       access.NewGate(rewind),
	}
}

// deactivate clears everything tied to one activation so the next one starts clean.
func (s *Session) deactivate() {
	s.CurrentTime = 0
	s.InitialSeekDone = false
	s.ActivatedBefore = false
	s.Dragging = false
	s.DragTarget = mo.None[float64]()
	s.seekPending = false
	s.seeking = false
	s.paywalled = false
	s.held = false
	s.milestone = false
	s.gate.Reset()
}

// DisplayTime is the drag target while dragging, the sampled time otherwise.
func (s *Session) DisplayTime() float64 {
	if s.Dragging {
		return s.DragTarget.OrElse(s.CurrentTime)
	}
	return s.CurrentTime
}

// Snapshot is a copy of a session safe to hand outside the controller.
type Snapshot struct {
	ContentID   string
	State       State
	CurrentTime float64
	DisplayTime float64
	Dragging    bool
	Duration    float64
	Window      access.FreeRange
	Viewer      access.Viewer
	Paywall     access.GateState
	Speed       float64
	Muted       bool
	Fullscreen  bool
	Active      bool
	Gifted      bool
}
