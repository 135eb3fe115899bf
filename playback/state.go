package playback

// State is the controller state of one mounted player.
type State int

const (
	Idle State = iota
	AccessPending
	Evaluating
	Playable
	Playing
	Paused
	Paywalled
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AccessPending:
		return "access pending"
	case Evaluating:
		return "evaluating"
	case Playable:
		return "playable"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Paywalled:
		return "paywalled"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Effect is an engine or loop command produced by a transition.
type Effect int

const (
	Resume Effect = iota + 1
	Pause
	Mute
	Unmute
	InitialSeek
	StartSampling
	StopSampling
)

func (e Effect) String() string {
	switch e {
	case Resume:
		return "resume"
	case Pause:
		return "pause"
	case Mute:
		return "mute"
	case Unmute:
		return "unmute"
	case InitialSeek:
		return "initial seek"
	case StartSampling:
		return "start sampling"
	case StopSampling:
		return "stop sampling"
	default:
		return "unknown"
	}
}

// Inputs is a snapshot of everything the state depends on.
type Inputs struct {
	Mounted     bool
	AccessKnown bool
	Ready       bool
	Failed      bool

	Active  bool
	Focused bool
	Gifted  bool
	Held    bool
	Muted   bool

	NeedsInitialSeek bool
	InitialSeekDone  bool
	SeekPending      bool

	Paywalled bool

	// Last commanded engine state.
	Playing  bool
	Audible  bool
	Sampling bool
}

// transition computes the next state and the effects that bring the engine in line with it.
func transition(prev State, in Inputs) (State, []Effect) {
	next := decide(prev, in)

	var effects []Effect

	wantPlay := next == Playing
	if wantPlay && !in.Playing {
		effects = append(effects, Resume)
	}
	if !wantPlay && in.Playing {
		effects = append(effects, Pause)
	}

	wantAudible := in.Active && in.Focused && !in.Muted && next != Error
	if wantAudible && !in.Audible {
		effects = append(effects, Unmute)
	}
	if !wantAudible && in.Audible {
		effects = append(effects, Mute)
	}

	if next == Playable && !in.SeekPending {
		effects = append(effects, InitialSeek)
	}

	wantSampling := in.Active && in.Ready && next != Error
	if wantSampling && !in.Sampling {
		effects = append(effects, StartSampling)
	}
	if !wantSampling && in.Sampling {
		effects = append(effects, StopSampling)
	}

	return next, effects
}

func decide(prev State, in Inputs) State {
	switch {
	case prev == Error && in.Mounted:
		return Error
	case !in.Mounted:
		return Idle
	case in.Failed:
		return Error
	case !in.AccessKnown:
		return AccessPending
	case !in.Ready:
		return Evaluating
	case in.Paywalled:
		return Paywalled
	case in.Active && in.NeedsInitialSeek && !in.InitialSeekDone:
		return Playable
	case in.Active && in.Focused && !in.Gifted && !in.Held:
		return Playing
	default:
		return Paused
	}
}
