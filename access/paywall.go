package access

// DefaultRewind is how close to the window start, in seconds, the playhead
// must return to re-arm a dismissed paywall.
const DefaultRewind = 0.5

// GateState is the paywall visibility within one playthrough.
type GateState int

const (
	Hidden GateState = iota
	Shown
	Dismissed
)

func (s GateState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	case Dismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Gate turns a stream of positions into a single paywall trigger per playthrough.
type Gate struct {
	state  GateState
	rewind float64
}

// NewGate returns a hidden gate. A non-positive rewind uses DefaultRewind.
func NewGate(rewind float64) *Gate {
	if rewind <= 0 {
		rewind = DefaultRewind
	}
	return &Gate{rewind: rewind}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	return g.state
}

// Observe feeds one position sample and reports whether the paywall should open now.
// Returning near the window start starts a new playthrough.
func (g *Gate) Observe(p Policy, t float64) bool {
	if g.state != Hidden && t <= p.Window.Start+g.rewind {
		g.state = Hidden
		return false
	}

	if g.state == Hidden && p.PaywallDue(t) {
		g.state = Shown
		return true
	}

	return false
}

// Dismiss closes an open paywall without access; it stays closed until Reset
// or a rewind to the window start.
func (g *Gate) Dismiss() {
	if g.state == Shown {
		g.state = Dismissed
	}
}

// Reset starts a new playthrough.
func (g *Gate) Reset() {
	g.state = Hidden
}
