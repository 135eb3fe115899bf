package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

// activeCounter tracks how many mock players are active at once.
type activeCounter struct {
	now  atomic.Int32
	peak atomic.Int32
}

type mockPlayer struct {
	id      string
	counter *activeCounter

	mu      sync.Mutex
	active  bool
	focused bool
	log     []string
}

func newMockPlayer(id string, counter *activeCounter) *mockPlayer {
	return &mockPlayer{id: id, counter: counter, focused: true}
}

func (p *mockPlayer) SetActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if active == p.active {
		return
	}
	p.active = active
	if active {
		n := p.counter.now.Add(1)
		for {
			peak := p.counter.peak.Load()
			if n <= peak || p.counter.peak.CompareAndSwap(peak, n) {
				break
			}
		}
		p.log = append(p.log, "activate")
	} else {
		p.counter.now.Add(-1)
		p.log = append(p.log, "deactivate")
	}
}

func (p *mockPlayer) SetFocused(focused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = focused
}

func (p *mockPlayer) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *mockPlayer) Focused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

type schedulerFixture struct {
	clock   clockwork.FakeClock
	fetcher *stubFetcher
	counter *activeCounter
	s       *Scheduler
	players map[string]*mockPlayer

	mu      sync.Mutex
	changes []Change
}

func newSchedulerFixture(first ...string) *schedulerFixture {
	f := &schedulerFixture{
		clock:   clockwork.NewFakeClock(),
		fetcher: newStubFetcher(),
		counter: &activeCounter{},
		players: make(map[string]*mockPlayer),
	}
	f.fetcher.pages[1] = items(first...)
	f.s = NewScheduler(f.clock, DefaultConfig(), NewPager(f.fetcher, len(first)), func(c Change) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.changes = append(f.changes, c)
	})
	return f
}

func (f *schedulerFixture) mountAll() {
	for _, item := range f.s.Pager().Page().Items {
		p := newMockPlayer(item.ID, f.counter)
		f.players[item.ID] = p
		f.s.Mount(item.ID, p)
	}
}

func (f *schedulerFixture) count(kind ChangeKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// settle advances the fake clock in small steps until cond holds.
func (f *schedulerFixture) settle(cond func() bool) bool {
	for i := 0; i < 200; i++ {
		if cond() {
			return true
		}
		f.clock.Advance(10 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestSchedulerVisibility(t *testing.T) {
	Convey("Given a loaded and mounted feed", t, func() {
		f := newSchedulerFixture(seq("v", 6)...)
		defer f.s.Close()

		_, err := f.s.Load(context.Background())
		So(err, ShouldBeNil)
		f.mountAll()

		Convey("An item activates after staying visible for the minimum view time", func() {
			f.s.ReportVisibility("v0", 1)
			So(f.s.IsActive("v0"), ShouldBeFalse)

			So(f.settle(func() bool { return f.s.IsActive("v0") }), ShouldBeTrue)
			So(f.players["v0"].Active(), ShouldBeTrue)

			id, index := f.s.Active()
			So(id, ShouldEqual, "v0")
			So(index, ShouldEqual, 0)
		})

		Convey("Items below the threshold never activate", func() {
			f.s.ReportVisibility("v0", 0.9)
			f.settle(func() bool { return false })
			So(f.s.IsActive("v0"), ShouldBeFalse)
		})

		Convey("A candidate scrolled away before the dwell elapses is dropped", func() {
			f.s.ReportVisibility("v1", 1)
			f.s.ReportVisibility("v1", 0.5)
			f.settle(func() bool { return false })
			So(f.s.IsActive("v1"), ShouldBeFalse)
		})

		Convey("The most visible item wins and ties go to the earlier one", func() {
			f.s.ReportVisibility("v2", 0.96)
			f.s.ReportVisibility("v3", 1)
			So(f.settle(func() bool { return f.s.IsActive("v3") }), ShouldBeTrue)

			f.s.ReportVisibility("v3", 0.97)
			f.s.ReportVisibility("v2", 0.97)
			So(f.settle(func() bool { return f.s.IsActive("v2") }), ShouldBeTrue)
		})

		Convey("Unmounting the active item deactivates it", func() {
			So(f.s.Activate("v4"), ShouldBeTrue)
			f.s.Unmount("v4")
			So(f.players["v4"].Active(), ShouldBeFalse)
			So(f.s.IsActive("v4"), ShouldBeFalse)
			So(f.s.Activate("v4"), ShouldBeFalse)
		})
	})
}

func TestSchedulerSingleActive(t *testing.T) {
	Convey("Given a rapidly scrolled feed", t, func() {
		f := newSchedulerFixture(seq("s", 6)...)
		defer f.s.Close()

		_, _ = f.s.Load(context.Background())
		f.mountAll()

		Convey("At most one player is ever active", func() {
			var wg sync.WaitGroup
			for round := 0; round < 20; round++ {
				for _, id := range seq("s", 6) {
					wg.Add(1)
					go func(id string) {
						defer wg.Done()
						f.s.Activate(id)
					}(id)
				}
			}
			wg.Wait()

			So(f.counter.peak.Load(), ShouldEqual, 1)
			So(f.counter.now.Load(), ShouldEqual, 1)
		})

		Convey("The previous player is deactivated before the next one activates", func() {
			f.s.Activate("s0")
			f.s.Activate("s1")

			So(f.players["s0"].log, ShouldResemble, []string{"activate", "deactivate"})
			So(f.players["s1"].log, ShouldResemble, []string{"activate"})
			So(f.count(Deactivated), ShouldEqual, 1)
			So(f.count(Activated), ShouldEqual, 2)
		})
	})
}

func TestSchedulerPrefetch(t *testing.T) {
	Convey("Given a feed of pages of three", t, func() {
		f := newSchedulerFixture("a", "b", "c")
		defer f.s.Close()

		_, _ = f.s.Load(context.Background())
		f.mountAll()

		Convey("Activating near the end loads the next page", func() {
			f.fetcher.pages[2] = items("c", "d", "e", "f")

			f.s.Activate("a")
			So(f.fetcher.Calls(), ShouldResemble, []int{1})

			f.s.Activate("b")
			So(eventually(func() bool { return f.s.Pager().Len() == 6 }), ShouldBeTrue)
			So(ids(f.s.Pager().Page()), ShouldResemble, []string{"a", "b", "c", "d", "e", "f"})
			So(eventually(func() bool { return f.count(PageLoaded) == 2 }), ShouldBeTrue)
		})

		Convey("A failed prefetch is recorded and leaves the feed open", func() {
			f.fetcher.fail[2] = errBackendDown

			f.s.Activate("c")
			So(eventually(func() bool { return f.s.PrefetchErr() != nil }), ShouldBeTrue)
			So(f.s.PrefetchErr(), ShouldEqual, errBackendDown)
			So(f.s.Pager().HasMore(), ShouldBeTrue)
			So(eventually(func() bool { return f.count(PrefetchFailed) == 1 }), ShouldBeTrue)

			Convey("And a manual load clears it", func() {
				delete(f.fetcher.fail, 2)
				f.fetcher.pages[2] = items("d")
				_, err := f.s.LoadMore(context.Background())
				So(err, ShouldBeNil)
				So(f.s.PrefetchErr(), ShouldBeNil)
				So(f.s.Pager().HasMore(), ShouldBeFalse)
			})
		})
	})
}

func TestSchedulerRefreshAndFocus(t *testing.T) {
	Convey("Given an active item deep in the feed", t, func() {
		f := newSchedulerFixture(seq("r", 6)...)
		defer f.s.Close()

		_, _ = f.s.Load(context.Background())
		f.mountAll()
		f.s.Activate("r3")

		Convey("Refresh returns to the first item", func() {
			_, err := f.s.Refresh(context.Background())
			So(err, ShouldBeNil)

			So(f.players["r3"].Active(), ShouldBeFalse)
			So(f.players["r0"].Active(), ShouldBeTrue)
			id, index := f.s.Active()
			So(id, ShouldEqual, "r0")
			So(index, ShouldEqual, 0)
		})

		Convey("Losing focus is forwarded to every mounted player", func() {
			f.s.SetFocused(false)
			for _, p := range f.players {
				So(p.Focused(), ShouldBeFalse)
			}
			So(f.s.IsActive("r3"), ShouldBeTrue)

			late := newMockPlayer("late", f.counter)
			f.s.Mount("late", late)
			So(late.Focused(), ShouldBeFalse)

			f.s.SetFocused(true)
			So(f.players["r3"].Focused(), ShouldBeTrue)
		})
	})
}

func TestSchedulerClose(t *testing.T) {
	Convey("Given a scheduler with pending timers and fetches", t, func() {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		f := newSchedulerFixture("a", "b", "c")
		_, _ = f.s.Load(context.Background())
		f.mountAll()

		f.fetcher.mu.Lock()
		f.fetcher.gate = make(chan struct{})
		f.fetcher.mu.Unlock()

		f.s.ReportVisibility("a", 1)
		f.s.Activate("c")

		Convey("Close deactivates and waits for them", func() {
			f.s.Close()
			So(f.players["c"].Active(), ShouldBeFalse)
			So(f.s.Activate("a"), ShouldBeFalse)
		})
	})
}
