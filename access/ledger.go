package access

import "sync"

// Signal is a purchase-completed notification from the store.
type Signal struct {
	IsVideoPurchased         bool
	IsPurchasedSeries        bool
	IsPurchasedPass          bool
	IsPurchasedCommunityPass bool

	VideoID   string
	SeriesID  string
	CreatorID string
}

func (s Signal) granted() bool {
	return s.IsVideoPurchased || s.IsPurchasedSeries || s.IsPurchasedPass || s.IsPurchasedCommunityPass
}

// Scope names what a content item can be unlocked by.
type Scope struct {
	VideoID   string
	SeriesID  string
	CreatorID string
}

// Ledger records purchases made during a session and versions them so that
// mounted players re-evaluate access without remounting.
type Ledger struct {
	mu       sync.RWMutex
	version  int
	videos   map[string]struct{}
	series   map[string]struct{}
	creators map[string]struct{}

	subscribers map[int]func(version int)
	nextSub     int
}

// NewLedger returns an empty ledger at version zero.
func NewLedger() *Ledger {
	return &Ledger{
		videos:      make(map[string]struct{}),
		series:      make(map[string]struct{}),
		creators:    make(map[string]struct{}),
		subscribers: make(map[int]func(int)),
	}
}

// Version returns the number of purchase signals that granted something.
func (l *Ledger) Version() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Publish records a signal. When any flag is set the version is bumped and
// subscribers are notified synchronously, outside the lock.
func (l *Ledger) Publish(s Signal) bool {
	if !s.granted() {
		return false
	}

	l.mu.Lock()
	if s.IsVideoPurchased && s.VideoID != "" {
		l.videos[s.VideoID] = struct{}{}
	}
	if s.IsPurchasedSeries && s.SeriesID != "" {
		l.series[s.SeriesID] = struct{}{}
	}
	if (s.IsPurchasedPass || s.IsPurchasedCommunityPass) && s.CreatorID != "" {
		l.creators[s.CreatorID] = struct{}{}
	}
	l.version++
	version := l.version

	subs := make([]func(int), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(version)
	}

	return true
}

// Resolve ORs the recorded grants for scope into base.
func (l *Ledger) Resolve(base Viewer, scope Scope) Viewer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	granted := Viewer{Version: l.version}
	if _, ok := l.videos[scope.VideoID]; ok && scope.VideoID != "" {
		granted.IsPurchased = true
	}
	if _, ok := l.series[scope.SeriesID]; ok && scope.SeriesID != "" {
		granted.IsPurchasedSeries = true
	}
	if _, ok := l.creators[scope.CreatorID]; ok && scope.CreatorID != "" {
		granted.IsPurchasedCreatorPass = true
	}

	return base.Merge(granted)
}

// Subscribe registers fn for version bumps and returns a function that removes it.
func (l *Ledger) Subscribe(fn func(version int)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}
