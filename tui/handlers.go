package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/feed"
	"github.com/reelgate/reelgate/history"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/playback"
	"github.com/reelgate/reelgate/player"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// frameRate is how often the progress bar is redrawn.
const frameRate = 100 * time.Millisecond

// scrubStep is how far one rewind or forward key press drags the progress bar.
const scrubStep = 5.0

type (
	feedLoadedMsg feed.Page
	changeMsg     feed.Change
	eventMsg      playback.Event
	tickMsg       time.Time
	mountedMsg    struct {
		id  string
		err error
	}
	seekedMsg struct {
		decision access.Decision
		err      error
	}
	episodeMsg struct {
		id   string
		next backend.ContentSummary
	}
	historyMsg []*history.Entry
)

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return b.spinnerC.Tick
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
}

// waitForMessage delivers one controller or scheduler message and is re-issued after each.
func (b *statefulBubble) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.messages:
			return msg
		case <-b.ctx.Done():
			return nil
		}
	}
}

func (b *statefulBubble) loadFeed() tea.Cmd {
	return func() tea.Msg {
		page, err := b.scheduler.Load(b.ctx)
		if err != nil {
			return fmt.Errorf("load feed: %w", err)
		}
		return feedLoadedMsg(page)
	}
}

func (b *statefulBubble) refreshFeed() tea.Cmd {
	return func() tea.Msg {
		if _, err := b.scheduler.Refresh(b.ctx); err != nil {
			return fmt.Sprintf("Refresh failed: %v", err)
		}
		return nil
	}
}

func (b *statefulBubble) loadMore() tea.Cmd {
	return func() tea.Msg {
		if _, err := b.scheduler.LoadMore(b.ctx); err != nil {
			if errors.Is(err, feed.ErrFetchInFlight) {
				return "Already loading"
			}
			return fmt.Sprintf("Loading more failed: %v", err)
		}
		return nil
	}
}

// mountWindow keeps a player mounted for every item within window of the
// cursor, unmounts the rest and reports what is on screen to the scheduler.
func (b *statefulBubble) mountWindow() tea.Cmd {
	wanted := make(map[string]backend.ContentSummary)
	for i := b.cursor - window; i <= b.cursor+window; i++ {
		if item, ok := b.pager.At(i); ok {
			wanted[item.ID] = item
		}
	}

	var (
		cmds    []tea.Cmd
		leaving []*playback.Controller
	)

	for id, c := range b.players {
		if _, ok := wanted[id]; ok {
			continue
		}
		b.scheduler.Unmount(id)
		delete(b.players, id)
		delete(b.paywalls, id)
		leaving = append(leaving, c)
	}

	for id, item := range wanted {
		if _, ok := b.players[id]; ok {
			continue
		}

		engine, err := player.New(b.options.Engine, item.Duration)
		if err != nil {
			return func() tea.Msg { return err }
		}

		c := b.newController(engine)
		if b.options.Muted {
			c.SetMuted(true)
		}
		b.players[id] = c
		b.scheduler.Mount(id, c)
		cmds = append(cmds, b.mount(id, c, item))
	}

	current, _ := b.pager.At(b.cursor)
	for id := range b.players {
		visible := lo.Ternary(id == current.ID, 1.0, 0.0)
		b.scheduler.ReportVisibility(id, visible)
	}

	if len(leaving) > 0 {
		cmds = append(cmds, func() tea.Msg {
			for _, c := range leaving {
				if err := c.Close(); err != nil {
					log.With("controller", c.ID()).Warnf("close player: %v", err)
				}
			}
			return nil
		})
	}

	return tea.Batch(cmds...)
}

func (b *statefulBubble) mount(id string, c *playback.Controller, item backend.ContentSummary) tea.Cmd {
	return func() tea.Msg {
		return mountedMsg{id: id, err: c.Mount(item)}
	}
}

// watched records a view and a history entry, remotely and in the local watch log.
func (b *statefulBubble) watched(ctx context.Context, content backend.ContentSummary, fraction float64) {
	if err := b.options.Client.Watched(ctx, content.ID); err != nil {
		log.With("content", content.ID).Warnf("watched side effects: %v", err)
	}

	if !viper.GetBool(key.HistorySave) {
		return
	}
	if err := history.Save(content, fraction); err != nil {
		log.With("content", content.ID).Errorf("save watch log: %v", err)
	}
}

func (b *statefulBubble) scrub(c *playback.Controller, delta float64) tea.Cmd {
	scrubber := c.Scrubber()
	scrubber.Nudge(delta)

	return func() tea.Msg {
		decision, err := scrubber.Release(b.ctx)
		return seekedMsg{decision: decision, err: err}
	}
}

func (b *statefulBubble) resolvePaywall(c *playback.Controller) tea.Cmd {
	return func() tea.Msg {
		c.ResolvePaywall()
		return nil
	}
}

// purchase publishes a completed purchase for the open paywall's route.
// Every mounted player sharing the unlocked scope re-evaluates its access,
// which may rewind and resume it, so the signal is sent off the event loop.
func (b *statefulBubble) purchase(id string, content backend.ContentSummary) tea.Cmd {
	route, ok := b.paywalls[id]
	if !ok {
		route = access.RouteFor(content.Offer())
	}
	signal := purchaseSignal(route, content)

	return func() tea.Msg {
		if !b.ledger.Publish(signal) {
			return "Nothing to unlock"
		}
		return fmt.Sprintf("Purchased %s", route.Kind)
	}
}

func purchaseSignal(route access.Route, content backend.ContentSummary) access.Signal {
	signal := access.Signal{VideoID: content.ID, CreatorID: content.CreatorID}
	if series, ok := content.Series.Get(); ok {
		signal.SeriesID = series.ID
	}

	switch route.Kind {
	case access.PurchaseSeries:
		signal.IsPurchasedSeries = true
	case access.PurchaseVideo:
		signal.IsVideoPurchased = true
	default:
		signal.IsPurchasedPass = true
	}
	return signal
}

func (b *statefulBubble) nextEpisode(id string, content backend.ContentSummary) tea.Cmd {
	series, ok := content.Series.Get()
	if !ok {
		return func() tea.Msg { return "Not part of a series" }
	}

	return func() tea.Msg {
		s, err := b.options.Client.Series(b.ctx, series.ID)
		if err != nil {
			return fmt.Sprintf("Loading series failed: %v", err)
		}
		next, ok := s.Next(content.ID).Get()
		if !ok {
			return "Last episode"
		}
		return episodeMsg{id: id, next: next}
	}
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	return func() tea.Msg {
		entries, err := history.List()
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		return historyMsg(entries)
	}
}
