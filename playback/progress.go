package playback

import (
	"context"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/util"
	"github.com/samber/mo"
)

// Scrubber is the drag-to-seek gesture on a controller's progress bar.
type Scrubber struct {
	c *Controller
}

func (c *Controller) Scrubber() Scrubber {
	return Scrubber{c: c}
}

// Grab freezes the displayed time at the current position. Samples are
// ignored until Release.
func (s Scrubber) Grab() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	session := s.c.session
	session.Dragging = true
	session.DragTarget = mo.Some(session.CurrentTime)
}

// Move sets the drag target to a fraction of the duration.
func (s Scrubber) Move(fraction float64) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	session := s.c.session
	if !session.Dragging {
		return
	}
	session.DragTarget = mo.Some(util.Clamp(fraction, 0, 1) * s.c.duration)
}

// Nudge moves the drag target by delta seconds, grabbing first if needed.
func (s Scrubber) Nudge(delta float64) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	session := s.c.session
	if !session.Dragging {
		session.Dragging = true
		session.DragTarget = mo.Some(session.CurrentTime)
	}
	target := session.DragTarget.OrElse(session.CurrentTime) + delta
	session.DragTarget = mo.Some(util.Clamp(target, 0, max(s.c.duration, 0)))
}

// Target is the pending drag target, if dragging.
func (s Scrubber) Target() mo.Option[float64] {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if !s.c.session.Dragging {
		return mo.None[float64]()
	}
	return s.c.session.DragTarget
}

// Release ends the drag and commits the target if the viewer may seek there.
// A denial is returned as a decision, not an error, and leaves the position unchanged.
func (s Scrubber) Release(ctx context.Context) (access.Decision, error) {
	target, ok := s.Target().Get()
	if !ok {
		return access.Decision{Allowed: false, Reason: mo.None[access.Reason]()}, nil
	}
	return s.c.seek(ctx, target, true)
}

// Cancel ends the drag without seeking.
func (s Scrubber) Cancel() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	s.c.session.Dragging = false
	s.c.session.DragTarget = mo.None[float64]()
}
