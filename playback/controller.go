// Package playback drives one media engine per mounted feed item: access
// evaluation, the one-time seek into the free window, position sampling,
// the paywall, the watched milestone, speed gestures and drag-to-seek.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/player"
	"github.com/samber/mo"
)

var (
	ErrClosed    = errors.New("controller closed")
	ErrNotLoaded = errors.New("media not loaded")
	// ErrEngine marks terminal engine failures.
	ErrEngine = errors.New("engine failure")
)

// atStart is how close the engine must already be to the window start for
// the initial seek to be skipped.
const atStart = 0.05

type Options struct {
	Engine   player.Engine
	Clock    clockwork.Clock
	Ledger   *access.Ledger
	UserID   string
	Config   Config
	Observer Observer
	Watched  WatchedFunc
}

// Controller owns one engine and the session of the content mounted on it.
//
// Engine command sequences are serialized by engineMu, state by mu, always
// acquired in that order. Callbacks from the engine, the ledger and the
// sampling loop never hold either lock when they arrive.
type Controller struct {
	id       string
	cfg      Config
	clock    clockwork.Clock
	engine   player.Engine
	ledger   *access.Ledger
	userID   string
	observer Observer
	watched  WatchedFunc
	seeker   Seeker
	swipes   *SwipeDetector

	engineMu sync.Mutex
	mu       sync.Mutex

	content     backend.ContentSummary
	mounted     bool
	base        access.Viewer
	viewer      access.Viewer
	accessKnown bool
	duration    float64
	session     *Session
	state       State
	speed       Speed
	failure     error
	marked      bool

	active     bool
	focused    bool
	gifted     bool
	muted      bool
	fullscreen bool

	playing      bool
	audible      bool
	sampling     bool
	stopSampling context.CancelFunc

	// gen changes on every content switch and deactivation; continuations
	// carrying an older value are dropped.
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	unsubscribe []func()
}

func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	cfg := opts.Config.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		id:       uuid.NewString(),
		cfg:      cfg,
		clock:    opts.Clock,
		engine:   opts.Engine,
		ledger:   opts.Ledger,
		userID:   opts.UserID,
		observer: opts.Observer,
		watched:  opts.Watched,
		seeker:   NewSeeker(opts.Clock, cfg.SeekGrace, cfg.SeekTolerance),
		swipes:   NewSwipeDetector(cfg),
		session:  newSession("", cfg.RewindReset),
		focused:  true,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.genCtx, c.genCancel = context.WithCancel(ctx)

	c.unsubscribe = append(c.unsubscribe, c.engine.OnStatus(c.onStatus))
	if c.ledger != nil {
		c.unsubscribe = append(c.unsubscribe, c.ledger.Subscribe(c.onLedger))
	}

	return c
}

// ID identifies the controller within a feed.
func (c *Controller) ID() string {
	return c.id
}

// renew starts a new generation, cancelling the previous one's loops and seeks.
// Must be called with mu held.
func (c *Controller) renew() {
	c.genCancel()
	c.gen++
	c.genCtx, c.genCancel = context.WithCancel(c.ctx)
	c.sampling = false
	c.stopSampling = nil
}

// Mount loads content on the engine with a fresh session and base speed.
func (c *Controller) Mount(content backend.ContentSummary) error {
	c.engineMu.Lock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.engineMu.Unlock()
		return ErrClosed
	}
	c.renew()
	c.content = content
	c.mounted = true
	c.accessKnown = false
	c.viewer = access.Viewer{}
	c.duration = content.Duration
	c.session = newSession(content.ID, c.cfg.RewindReset)
	c.state = Idle
	c.speed = Speed{}
	c.failure = nil
	c.marked = false
	c.playing = false
	c.audible = false
	c.mu.Unlock()

	c.step(nil)
	c.step(func() bool {
		c.base = content.Viewer(c.userID)
		c.viewer = c.resolve()
		c.accessKnown = true
		return true
	})

	c.engineMu.Unlock()

	if err := c.engine.Load(content.VideoURL, content.Title); err != nil {
		return fmt.Errorf("load %s: %w", content.ID, err)
	}
	if err := c.engine.SetSpeed(c.speed.Rate()); err != nil {
		log.With("content", content.ID).Debugf("reset speed: %v", err)
	}

	return nil
}

// SwitchEpisode swaps the source in place. Fullscreen and the active flag
// are kept; session and speed start over.
func (c *Controller) SwitchEpisode(next backend.ContentSummary) error {
	return c.Mount(next)
}

// resolve must be called with mu held.
func (c *Controller) resolve() access.Viewer {
	if c.ledger == nil {
		return c.base
	}
	return c.viewer.Merge(c.ledger.Resolve(c.base, c.content.Scope()))
}

// policy must be called with mu held.
func (c *Controller) policy() access.Policy {
	return access.Policy{
		Viewer:   c.viewer,
		Window:   c.content.FreeWindow(),
		Duration: c.duration,
		Epsilon:  c.cfg.PaywallEpsilon,
	}
}

// inputs must be called with mu held.
func (c *Controller) inputs() Inputs {
	s := c.session
	return Inputs{
		Mounted:          c.mounted,
		AccessKnown:      c.accessKnown,
		Ready:            s.Ready,
		Failed:           s.Failed,
		Active:           c.active,
		Focused:          c.focused,
		Gifted:           c.gifted,
		Held:             s.held,
		Muted:            c.muted,
		NeedsInitialSeek: c.content.FreeWindow().Start > 0,
		InitialSeekDone:  s.InitialSeekDone,
		SeekPending:      s.seekPending,
		Paywalled:        s.paywalled,
		Playing:          c.playing,
		Audible:          c.audible,
		Sampling:         c.sampling,
	}
}

// step applies mutate, runs the transition and carries out its effects.
// Callers hold engineMu. A mutate returning false skips the transition.
func (c *Controller) step(mutate func() bool) {
	c.mu.Lock()
	if c.closed || (mutate != nil && !mutate()) {
		c.mu.Unlock()
		return
	}

	s := c.session
	if c.active && s.Ready && c.accessKnown && !s.ActivatedBefore && !s.Failed {
		s.ActivatedBefore = true
		if c.content.FreeWindow().Start <= 0 {
			s.InitialSeekDone = true
		}
	}

	prev := c.state
	next, effects := transition(prev, c.inputs())
	c.state = next

	var commands []Effect
	for _, effect := range effects {
		switch effect {
		case Resume:
			c.playing = true
			commands = append(commands, effect)
		case Pause:
			c.playing = false
			commands = append(commands, effect)
		case Unmute:
			c.audible = true
			commands = append(commands, effect)
		case Mute:
			c.audible = false
			commands = append(commands, effect)
		case InitialSeek:
			s.seekPending = true
			c.wg.Add(1)
			go c.initialSeek(c.genCtx, c.gen, c.content.FreeWindow().Start)
		case StartSampling:
			ctx, cancel := context.WithCancel(c.genCtx)
			c.sampling = true
			c.stopSampling = cancel
			gen := c.gen
			clock := NewClock(c.clock, c.cfg, c.engine, func(t float64) { c.onSample(gen, t) })
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				clock.Run(ctx)
			}()
		case StopSampling:
			if c.stopSampling != nil {
				c.stopSampling()
			}
			c.sampling = false
			c.stopSampling = nil
		}
	}

	event := Event{Kind: StateChanged, Controller: c.id, ContentID: c.content.ID, Prev: prev, State: next, Err: c.failure}
	c.mu.Unlock()

	for _, command := range commands {
		c.command(command)
	}

	if prev != next {
		log.With("content", event.ContentID).Debugf("%s -> %s", prev, next)
		c.emit(event)
	}
}

func (c *Controller) command(effect Effect) {
	var err error
	switch effect {
	case Resume:
		err = c.engine.Resume()
	case Pause:
		err = c.engine.Pause()
	case Unmute:
		err = c.engine.SetMuted(false)
	case Mute:
		err = c.engine.SetMuted(true)
	}
	if err != nil {
		log.With("controller", c.id).Warnf("%s: %v", effect, err)
	}
}

func (c *Controller) emit(event Event) {
	if c.observer != nil {
		c.observer(event)
	}
}

func (c *Controller) initialSeek(ctx context.Context, gen uint64, start float64) {
	defer c.wg.Done()

	pos, err := c.engine.GetTimePos()
	if err != nil || math.Abs(pos-start) > atStart {
		pos, err = c.seeker.Seek(ctx, c.engine, start)
	}
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.With("content", c.Content().ID).Warnf("initial seek: %v", err)
	}

	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.step(func() bool {
		if gen != c.gen {
			return false
		}
		c.session.seekPending = false
		c.session.InitialSeekDone = true
		if err == nil {
			c.session.CurrentTime = pos
		}
		return true
	})
}

func (c *Controller) onSample(gen uint64, t float64) {
	c.mu.Lock()
	s := c.session
	if c.closed || gen != c.gen || s.Dragging || s.seeking || s.seekPending {
		c.mu.Unlock()
		return
	}

	s.CurrentTime = t
	policy := c.policy()
	content := c.content

	fired := s.gate.Observe(policy, t)
	if fired {
		s.paywalled = true
	}

	fraction := policy.WatchedFraction(t)
	milestone := !s.milestone && s.InitialSeekDone && fraction >= c.cfg.WatchedThreshold
	if milestone {
		s.milestone = true
		if c.watched != nil {
			c.wg.Add(1)
			go func(ctx context.Context) {
				defer c.wg.Done()
				c.watched(ctx, content, fraction)
			}(c.ctx)
		}
	}
	c.mu.Unlock()

	if fired {
		c.engineMu.Lock()
		c.step(func() bool { return gen == c.gen })
		c.engineMu.Unlock()

		route := access.RouteFor(content.Offer())
		log.With("content", content.ID).Infof("free preview ended at %.2f, offering %s", t, route.Kind)
		c.emit(Event{Kind: PaywallReached, Controller: c.id, ContentID: content.ID, Route: route})
	}

	if milestone {
		c.emit(Event{Kind: WatchedThreshold, Controller: c.id, ContentID: content.ID, Fraction: fraction})
	}
}

func (c *Controller) onStatus(status player.Status, err error) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	if status == player.Ready && c.Duration() <= 0 {
		if d, derr := c.engine.GetDuration(); derr == nil {
			c.mu.Lock()
			c.duration = d
			c.mu.Unlock()
		}
	}

	c.step(func() bool {
		s := c.session
		s.Ready = status.Loaded()
		s.Buffering = status == player.Buffering
		if status == player.Failed {
			s.Failed = true
			c.failure = fmt.Errorf("%w: %v", ErrEngine, err)
		}
		return true
	})

	if status == player.Failed {
		c.mu.Lock()
		id := c.content.ID
		failure := c.failure
		c.mu.Unlock()
		log.With("content", id).Errorf("engine failed: %v", err)
		c.emit(Event{Kind: EngineFailed, Controller: c.id, ContentID: id, State: Error, Err: failure})
	}

	if status == player.Ready {
		c.markWindow()
	}
}

// markWindow shows the free window once per mount to viewers it restricts.
// Must be called with engineMu held.
func (c *Controller) markWindow() {
	c.mu.Lock()
	if c.marked || c.closed {
		c.mu.Unlock()
		return
	}
	c.marked = true
	policy := c.policy()
	c.mu.Unlock()

	if policy.Unrestricted() {
		return
	}
	if err := player.MarkWindow(c.engine, policy.Window, policy.Duration); err != nil {
		log.With("controller", c.id).Debugf("mark free window: %v", err)
	}
}

func (c *Controller) onLedger(int) {
	c.engineMu.Lock()

	var unlocked, paywalled bool
	c.step(func() bool {
		if !c.mounted {
			return false
		}
		c.viewer = c.resolve()
		unlocked = c.policy().Unrestricted()
		paywalled = c.session.paywalled
		return true
	})

	c.engineMu.Unlock()

	if unlocked && paywalled {
		c.ResolvePaywall()
	}
}

// SetActive is called by the feed scheduler only. Deactivation pauses and
// mutes before returning and resets the activation state of the session.
func (c *Controller) SetActive(active bool) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.step(func() bool {
		if c.active == active {
			return false
		}
		c.active = active
		if !active {
			c.renew()
			c.session.deactivate()
		}
		return true
	})

	if !active {
		c.command(Pause)
		c.command(Mute)
	}
}

// SetFocused reflects screen focus. Losing focus pauses and mutes within the call.
func (c *Controller) SetFocused(focused bool) {
	c.set(func() { c.focused = focused })
}

// SetGifted holds playback while an external gifting flow is open.
func (c *Controller) SetGifted(gifted bool) {
	c.set(func() { c.gifted = gifted })
}

func (c *Controller) SetMuted(muted bool) {
	c.set(func() { c.muted = muted })
}

// TogglePause holds or releases playback on the viewer's request.
func (c *Controller) TogglePause() {
	c.set(func() { c.session.held = !c.session.held })
}

func (c *Controller) set(mutate func()) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.step(func() bool {
		mutate()
		return true
	})
}

func (c *Controller) SetFullscreen(fullscreen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullscreen = fullscreen
}

func (c *Controller) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// Swipe applies a speed gesture and returns how it was recognised.
func (c *Controller) Swipe(swipe Swipe) Direction {
	dir := c.swipes.Detect(swipe, c.clock.Now())
	if dir == NoSwipe {
		return dir
	}

	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.mu.Lock()
	if dir == SwipeForward {
		c.speed = c.speed.Next()
	} else {
		c.speed = c.speed.Prev()
	}
	rate := c.speed.Rate()
	id := c.content.ID
	c.mu.Unlock()

	if err := c.engine.SetSpeed(rate); err != nil {
		log.With("content", id).Warnf("set speed: %v", err)
	}
	c.emit(Event{Kind: SpeedChanged, Controller: c.id, ContentID: id, Speed: rate})

	return dir
}

// ResolvePaywall closes an open paywall. With access the player rewinds to
// the window start and plays; without, it rewinds and stays paused.
func (c *Controller) ResolvePaywall() {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.mu.Lock()
	s := c.session
	if c.closed || !s.paywalled {
		c.mu.Unlock()
		return
	}
	policy := c.policy()
	gen, ctx := c.gen, c.genCtx
	s.seeking = true
	c.playing = false
	c.mu.Unlock()

	c.command(Pause)
	pos, err := c.seeker.Seek(ctx, c.engine, policy.Window.Start)

	unlocked := policy.Unrestricted()
	c.step(func() bool {
		if gen != c.gen {
			return false
		}
		s.seeking = false
		s.paywalled = false
		if err == nil {
			s.CurrentTime = pos
		}
		if unlocked {
			s.gate.Reset()
		} else {
			s.gate.Dismiss()
			s.held = true
		}
		return true
	})

	if err != nil && ctx.Err() == nil {
		log.With("controller", c.id).Warnf("rewind after paywall: %v", err)
	}
	c.emit(Event{Kind: PaywallResolved, Controller: c.id, ContentID: s.ContentID})
}

// seek validates target and commits it: pause, verified seek, then resume
// if the controller should be playing. With release set it also ends a drag.
func (c *Controller) seek(ctx context.Context, target float64, release bool) (access.Decision, error) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return access.Decision{}, ErrClosed
	}

	s := c.session
	id := c.content.ID
	decision := c.policy().CanSeekTo(target)

	if release {
		s.Dragging = false
		s.DragTarget = mo.None[float64]()
	}

	if !decision.Allowed {
		c.mu.Unlock()
		reason := decision.Reason.OrEmpty()
		log.With("content", id).Infof("seek to %.2f denied: %s", target, reason)
		c.emit(Event{Kind: SeekDenied, Controller: c.id, ContentID: id, Reason: reason})
		return decision, nil
	}

	if !s.Ready {
		c.mu.Unlock()
		return decision, ErrNotLoaded
	}

	gen, genCtx := c.gen, c.genCtx
	s.seeking = true
	c.playing = false
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(genCtx, cancel)
	defer stop()

	c.command(Pause)
	pos, err := c.seeker.Seek(ctx, c.engine, target)

	c.step(func() bool {
		if gen != c.gen {
			return false
		}
		s.seeking = false
		if err == nil {
			s.CurrentTime = pos
		}
		return true
	})

	return decision, err
}

// Seek validates and commits a seek outside of a drag gesture.
func (c *Controller) Seek(ctx context.Context, target float64) (access.Decision, error) {
	return c.seek(ctx, target, false)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Content() backend.ContentSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Duration is the content duration, or the engine's when the backend sent none.
func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *Controller) Policy() access.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy()
}

func (c *Controller) Speed() Speed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	return Snapshot{
		ContentID:   c.content.ID,
		State:       c.state,
		CurrentTime: s.CurrentTime,
		DisplayTime: s.DisplayTime(),
		Dragging:    s.Dragging,
		Duration:    c.duration,
		Window:      c.content.FreeWindow(),
		Viewer:      c.viewer,
		Paywall:     s.gate.State(),
		Speed:       c.speed.Rate(),
		Muted:       c.muted,
		Fullscreen:  c.fullscreen,
		Active:      c.active,
		Gifted:      c.gifted,
	}
}

// generation returns the current generation for callers outside the lock.
func (c *Controller) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Close stops sampling and pending seeks, silences the engine and closes it.
// It waits for every goroutine the controller started and is safe to repeat.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}

	c.engineMu.Lock()
	c.command(Pause)
	c.command(Mute)
	c.engineMu.Unlock()

	err := c.engine.Close()
	c.wg.Wait()

	return err
}
