// Package access decides how far a viewer may watch a piece of content.
//
// Premium content exposes a free window [Start, End]; viewers without a
// purchase, a creator pass or ownership may only seek and play inside it.
package access

import (
	"github.com/samber/mo"
)

// DefaultEpsilon is how early, in seconds, the paywall fires before the free window ends.
const DefaultEpsilon = 0.1

// FreeRange is the free-preview window of a content item, in seconds.
// An End of zero leaves the tail unrestricted.
type FreeRange struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"display_till_time"`
}

// Viewer holds the access flags of one viewer for one content item.
// Flags only ever turn on within a session; see Merge.
type Viewer struct {
	IsOwner                bool
	HasCreatorPass         bool
	IsPurchased            bool
	IsPurchasedSeries      bool
	IsPurchasedCreatorPass bool

	// Version is the ledger version the flags were resolved at.
	Version int
}

// HasFullAccess reports whether any purchase or pass unlocks the whole content.
func (v Viewer) HasFullAccess() bool {
	return v.IsPurchased || v.HasCreatorPass || v.IsPurchasedSeries || v.IsPurchasedCreatorPass
}

// Merge ORs the flags of both viewers and keeps the newer version.
func (v Viewer) Merge(other Viewer) Viewer {
	merged := Viewer{
		IsOwner:                v.IsOwner || other.IsOwner,
		HasCreatorPass:         v.HasCreatorPass || other.HasCreatorPass,
		IsPurchased:            v.IsPurchased || other.IsPurchased,
		IsPurchasedSeries:      v.IsPurchasedSeries || other.IsPurchasedSeries,
		IsPurchasedCreatorPass: v.IsPurchasedCreatorPass || other.IsPurchasedCreatorPass,
		Version:                v.Version,
	}
	if other.Version > merged.Version {
		merged.Version = other.Version
	}
	return merged
}

// Reason explains a denied seek.
type Reason int

const (
	BeforeFreeWindow Reason = iota + 1
	AfterFreeWindow
)

func (r Reason) String() string {
	switch r {
	case BeforeFreeWindow:
		return "before free preview"
	case AfterFreeWindow:
		return "after free preview"
	default:
		return "unknown"
	}
}

// Decision is the result of a seek check. Denials are values, not errors.
type Decision struct {
	Allowed bool
	Reason  mo.Option[Reason]
}

func allow() Decision {
	return Decision{Allowed: true, Reason: mo.None[Reason]()}
}

func deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: mo.Some(r)}
}

// Policy evaluates seeks and paywall triggers for one viewer and content item.
// The zero Epsilon is replaced by DefaultEpsilon.
type Policy struct {
	Viewer   Viewer
	Window   FreeRange
	Duration float64
	Epsilon  float64
}

// restricts reports whether End cuts the content short. An unknown duration
// counts as longer than any End.
func (p Policy) restricts() bool {
	return p.Window.End > 0 && (p.Duration <= 0 || p.Window.End < p.Duration)
}

// IsFree reports whether the window covers the whole content.
func (p Policy) IsFree() bool {
	return p.Window.Start == 0 && !p.restricts()
}

// IsPremium reports whether a paywall can ever fire for this content.
func (p Policy) IsPremium() bool {
	return p.restricts()
}

// Unrestricted reports whether the viewer may go anywhere.
func (p Policy) Unrestricted() bool {
	return p.Viewer.IsOwner || p.IsFree() || p.Viewer.HasFullAccess()
}

// CanSeekTo validates a requested position.
func (p Policy) CanSeekTo(t float64) Decision {
	if p.Unrestricted() {
		return allow()
	}

	if t < p.Window.Start {
		return deny(BeforeFreeWindow)
	}

	if p.restricts() && t > p.Window.End {
		return deny(AfterFreeWindow)
	}

	return allow()
}

// PaywallDue reports whether position t is past the end of the free window
// for a viewer without full access. The comparison is strict so a sample
// landing exactly on End-Epsilon does not fire.
func (p Policy) PaywallDue(t float64) bool {
	if !p.IsPremium() || p.Viewer.IsOwner || p.Viewer.HasFullAccess() {
		return false
	}

	eps := p.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	return t > p.Window.End-eps
}

// WatchedFraction normalizes position t against the watchable span.
// Free content is measured from zero, premium content from the window start.
func (p Policy) WatchedFraction(t float64) float64 {
	if p.IsFree() {
		if p.Duration <= 0 {
			return 0
		}
		return max(t/p.Duration, 0)
	}

	effective := p.Duration - p.Window.Start
	if effective <= 0 {
		return 0
	}

	return max((t-p.Window.Start)/effective, 0)
}
