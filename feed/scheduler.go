package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reelgate/reelgate/config"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/log"
	"github.com/spf13/viper"
)

// Player is a mounted feed item the scheduler can activate.
type Player interface {
	SetActive(active bool)
	SetFocused(focused bool)
}

type Config struct {
	// VisibilityThreshold is the visible fraction (0..1) an item needs to become active.
	VisibilityThreshold float64
	// MinViewTime is how long a candidate must stay visible before activation.
	MinViewTime time.Duration
	// PrefetchOffset is how far from the end activation triggers the next page.
	PrefetchOffset int
}

func DefaultConfig() Config {
	return Config{
		VisibilityThreshold: 0.95,
		MinViewTime:         200 * time.Millisecond,
		PrefetchOffset:      2,
	}
}

// LoadConfig reads the scheduler tunables from viper.
func LoadConfig() Config {
	cfg := Config{
		VisibilityThreshold: viper.GetFloat64(key.FeedVisibilityThreshold) / 100,
		MinViewTime:         config.Millis(key.FeedMinViewTime),
		PrefetchOffset:      viper.GetInt(key.FeedPrefetchOffset),
	}

	d := DefaultConfig()
	if cfg.VisibilityThreshold <= 0 || cfg.VisibilityThreshold > 1 {
		cfg.VisibilityThreshold = d.VisibilityThreshold
	}
	if cfg.MinViewTime < 0 {
		cfg.MinViewTime = d.MinViewTime
	}
	if cfg.PrefetchOffset <= 0 {
		cfg.PrefetchOffset = d.PrefetchOffset
	}
	return cfg
}

type ChangeKind int

const (
	Activated ChangeKind = iota + 1
	Deactivated
	PageLoaded
	PrefetchFailed
)

// Change is reported to the scheduler's listener outside of its lock.
type Change struct {
	Kind      ChangeKind
	ContentID string
	Index     int
	Page      Page
	Err       error
}

// Scheduler keeps at most one mounted player active: the most visible one,
// once it has stayed visible for the minimum view time.
type Scheduler struct {
	clock    clockwork.Clock
	cfg      Config
	pager    *Pager
	onChange func(Change)

	mu         sync.Mutex
	players    map[string]Player
	visibility map[string]float64
	active     string
	index      int
	focused    bool
	candidate  string
	stopDwell  context.CancelFunc
	prefetch   error
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(clock clockwork.Clock, cfg Config, pager *Pager, onChange func(Change)) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		clock:      clock,
		cfg:        cfg,
		pager:      pager,
		onChange:   onChange,
		players:    make(map[string]Player),
		visibility: make(map[string]float64),
		focused:    true,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Scheduler) notify(changes []Change) {
	if s.onChange == nil {
		return
	}
	for _, change := range changes {
		s.onChange(change)
	}
}

// Load fetches the first page of the feed.
func (s *Scheduler) Load(ctx context.Context) (Page, error) {
	page, err := s.pager.Load(ctx, 1)
	if err == nil {
		s.notify([]Change{{Kind: PageLoaded, Page: page}})
	}
	return page, err
}

// LoadMore fetches the next page on the viewer's request, e.g. after a failed prefetch.
func (s *Scheduler) LoadMore(ctx context.Context) (Page, error) {
	page, err := s.pager.LoadNext(ctx)
	s.mu.Lock()
	if err == nil {
		s.prefetch = nil
	}
	s.mu.Unlock()
	if err == nil {
		s.notify([]Change{{Kind: PageLoaded, Page: page}})
	}
	return page, err
}

// Refresh reloads page 1 and moves the active index back to the top.
func (s *Scheduler) Refresh(ctx context.Context) (Page, error) {
	page, err := s.pager.Refresh(ctx)
	if err != nil {
		return page, err
	}

	s.mu.Lock()
	var changes []Change
	s.cancelDwell()
	s.candidate = ""
	s.prefetch = nil
	changes = append(changes, s.deactivate()...)
	s.index = 0
	if first, ok := page.firstID(); ok {
		if _, mounted := s.players[first]; mounted {
			changes = append(changes, s.activate(first)...)
		}
	}
	s.mu.Unlock()

	s.notify(append([]Change{{Kind: PageLoaded, Page: page}}, changes...))
	return page, nil
}

func (p Page) firstID() (string, bool) {
	if len(p.Items) == 0 {
		return "", false
	}
	return p.Items[0].ID, true
}

// Mount registers the player rendering content id. It starts inactive.
func (s *Scheduler) Mount(id string, p Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if !s.focused {
		p.SetFocused(false)
	}
	s.players[id] = p
}

// Unmount removes the player of content id, deactivating it first.
func (s *Scheduler) Unmount(id string) {
	s.mu.Lock()
	var changes []Change
	if s.active == id {
		changes = s.deactivate()
	}
	if s.candidate == id {
		s.cancelDwell()
		s.candidate = ""
	}
	delete(s.players, id)
	delete(s.visibility, id)
	s.mu.Unlock()

	s.notify(changes)
}

// ReportVisibility records the visible fraction of content id and re-elects the candidate.
func (s *Scheduler) ReportVisibility(id string, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, ok := s.players[id]; !ok {
		return
	}
	s.visibility[id] = fraction

	best := s.mostVisible()
	switch {
	case best == s.candidate:
	case best == "" || best == s.active:
		s.cancelDwell()
		s.candidate = ""
	default:
		s.cancelDwell()
		s.candidate = best
		s.dwell(best)
	}
}

// mostVisible must be called with mu held. Ties go to the earlier feed item.
func (s *Scheduler) mostVisible() string {
	ids := make([]string, 0, len(s.visibility))
	for id, fraction := range s.visibility {
		if fraction >= s.cfg.VisibilityThreshold {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := s.visibility[ids[i]], s.visibility[ids[j]]
		if a != b {
			return a > b
		}
		return s.pager.IndexOf(ids[i]) < s.pager.IndexOf(ids[j])
	})
	return ids[0]
}

// dwell must be called with mu held.
func (s *Scheduler) dwell(id string) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopDwell = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.cfg.MinViewTime):
		}

		s.promote(ctx, id)
	}()
}

// cancelDwell must be called with mu held.
func (s *Scheduler) cancelDwell() {
	if s.stopDwell != nil {
		s.stopDwell()
		s.stopDwell = nil
	}
}

func (s *Scheduler) promote(ctx context.Context, id string) {
	s.mu.Lock()
	if ctx.Err() != nil || s.closed || s.candidate != id || s.visibility[id] < s.cfg.VisibilityThreshold {
		s.mu.Unlock()
		return
	}
	s.candidate = ""
	s.stopDwell = nil
	changes := s.activate(id)
	s.mu.Unlock()

	s.notify(changes)
}

// Activate makes content id the active player immediately.
func (s *Scheduler) Activate(id string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if _, ok := s.players[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.cancelDwell()
	s.candidate = ""
	changes := s.activate(id)
	s.mu.Unlock()

	s.notify(changes)
	return true
}

// activate deactivates the current player before activating id.
// Must be called with mu held.
func (s *Scheduler) activate(id string) []Change {
	if s.active == id {
		return nil
	}

	changes := s.deactivate()

	next := s.players[id]
	s.active = id
	s.index = s.pager.IndexOf(id)
	next.SetActive(true)
	changes = append(changes, Change{Kind: Activated, ContentID: id, Index: s.index})

	log.With("content", id).Debugf("activated feed item %d", s.index)

	s.maybePrefetch()
	return changes
}

// deactivate must be called with mu held.
func (s *Scheduler) deactivate() []Change {
	if s.active == "" {
		return nil
	}

	prev := s.active
	if p, ok := s.players[prev]; ok {
		p.SetActive(false)
	}
	s.active = ""

	return []Change{{Kind: Deactivated, ContentID: prev, Index: s.index}}
}

// maybePrefetch must be called with mu held.
func (s *Scheduler) maybePrefetch() {
	if s.index < 0 || s.index < s.pager.Len()-s.cfg.PrefetchOffset {
		return
	}
	if !s.pager.HasMore() || s.pager.Fetching() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		page, err := s.pager.LoadNext(s.ctx)
		if errors.Is(err, ErrFetchInFlight) {
			return
		}

		s.mu.Lock()
		s.prefetch = err
		s.mu.Unlock()

		if err != nil {
			if s.ctx.Err() == nil {
				log.Warnf("prefetch page %d: %v", page.Number+1, err)
				s.notify([]Change{{Kind: PrefetchFailed, Err: err}})
			}
			return
		}
		s.notify([]Change{{Kind: PageLoaded, Page: page}})
	}()
}

// SetFocused pauses and mutes every mounted player when the feed loses
// focus, within the call. The active player resumes when focus returns.
func (s *Scheduler) SetFocused(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.focused == focused {
		return
	}
	s.focused = focused

	for _, p := range s.players {
		p.SetFocused(focused)
	}
}

// IsActive reports whether content id holds the active slot.
func (s *Scheduler) IsActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && s.active == id
}

// Active returns the active content id and its feed index.
func (s *Scheduler) Active() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.index
}

// PrefetchErr is the last prefetch failure, cleared by a successful load.
func (s *Scheduler) PrefetchErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefetch
}

func (s *Scheduler) Pager() *Pager {
	return s.pager
}

// Close deactivates the active player and waits for dwell timers and prefetches.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.deactivate()
	s.mu.Unlock()

	s.wg.Wait()
}
