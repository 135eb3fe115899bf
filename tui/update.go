package tui

import (
	"fmt"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelgate/reelgate/feed"
	"github.com/reelgate/reelgate/history"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/playback"
	"github.com/reelgate/reelgate/util"
	"github.com/samber/lo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.FocusMsg:
		b.scheduler.SetFocused(true)
	case tea.BlurMsg:
		b.scheduler.SetFocused(false)
	case tickMsg:
		return b, tea.Batch(cmd, tick())
	case spinner.TickMsg:
		if b.loading {
			var spinnerCmd tea.Cmd
			b.spinnerC, spinnerCmd = b.spinnerC.Update(msg)
			return b, tea.Batch(cmd, spinnerCmd)
		}
		return b, cmd
	case changeMsg:
		return b, tea.Batch(cmd, b.onChange(feed.Change(msg)), b.waitForMessage())
	case eventMsg:
		return b, tea.Batch(cmd, b.onEvent(playback.Event(msg)), b.waitForMessage())
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg, cmd)
	case feedState:
		return b.updateFeed(msg, cmd)
	case historyState:
		return b.updateHistory(msg, cmd)
	case errorState:
		return b.updateError(msg, cmd)
	}

	return b, cmd
}

func (b *statefulBubble) updateLoading(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if page, ok := msg.(feedLoadedMsg); ok {
		b.stopLoading()
		b.newState(feedState)
		if len(page.Items) == 0 {
			return b, tea.Batch(cmd, notify("The feed is empty"))
		}
		return b, tea.Batch(cmd, b.mountWindow())
	}
	return b, cmd
}

func (b *statefulBubble) updateFeed(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mountedMsg:
		if msg.err != nil {
			log.With("content", msg.id).Errorf("mount: %v", msg.err)
			return b, tea.Batch(cmd, notify(fmt.Sprintf("Playback failed: %v", msg.err)))
		}
	case seekedMsg:
		switch {
		case msg.err != nil:
			return b, tea.Batch(cmd, notify(fmt.Sprintf("Seek failed: %v", msg.err)))
		case !msg.decision.Allowed:
			if reason, ok := msg.decision.Reason.Get(); ok {
				return b, tea.Batch(cmd, notify(fmt.Sprintf("Locked: %s", reason)))
			}
		}
	case episodeMsg:
		if c, ok := b.players[msg.id]; ok {
			delete(b.paywalls, msg.id)
			return b, tea.Batch(cmd, func() tea.Msg {
				if err := c.SwitchEpisode(msg.next); err != nil {
					return fmt.Sprintf("Switching episode failed: %v", err)
				}
				return fmt.Sprintf("Now playing %s", msg.next.Title)
			})
		}
	case tea.KeyMsg:
		return b.handleFeedKey(msg, cmd)
	}

	return b, cmd
}

func (b *statefulBubble) handleFeedKey(msg tea.KeyMsg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case bubblesKey.Matches(msg, b.keymap.quit):
		return b, tea.Quit
	case bubblesKey.Matches(msg, b.keymap.up):
		return b, tea.Batch(cmd, b.moveCursor(-1))
	case bubblesKey.Matches(msg, b.keymap.down):
		return b, tea.Batch(cmd, b.moveCursor(1))
	case bubblesKey.Matches(msg, b.keymap.refresh):
		return b, tea.Batch(cmd, b.refreshFeed())
	case bubblesKey.Matches(msg, b.keymap.loadMore):
		return b, tea.Batch(cmd, b.loadMore())
	case bubblesKey.Matches(msg, b.keymap.history):
		b.newState(historyState)
		return b, tea.Batch(cmd, b.loadHistory())
	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return b, cmd
	}

	c, id, ok := b.current()
	if !ok {
		return b, cmd
	}
	content := c.Content()

	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		c.TogglePause()
	case bubblesKey.Matches(msg, b.keymap.mute):
		c.SetMuted(!c.Snapshot().Muted)
	case bubblesKey.Matches(msg, b.keymap.fullscreen):
		c.SetFullscreen(!c.Fullscreen())
	case bubblesKey.Matches(msg, b.keymap.gift):
		c.SetGifted(!c.Snapshot().Gifted)
	case bubblesKey.Matches(msg, b.keymap.slower):
		c.Swipe(playback.Swipe{Velocity: -swipeVelocity, Distance: -swipeDistance})
	case bubblesKey.Matches(msg, b.keymap.faster):
		c.Swipe(playback.Swipe{Velocity: swipeVelocity, Distance: swipeDistance})
	case bubblesKey.Matches(msg, b.keymap.rewind):
		return b, tea.Batch(cmd, b.scrub(c, -scrubStep))
	case bubblesKey.Matches(msg, b.keymap.forward):
		return b, tea.Batch(cmd, b.scrub(c, scrubStep))
	case bubblesKey.Matches(msg, b.keymap.buy):
		return b, tea.Batch(cmd, b.purchase(id, content))
	case bubblesKey.Matches(msg, b.keymap.unlock):
		return b, tea.Batch(cmd, b.resolvePaywall(c))
	case bubblesKey.Matches(msg, b.keymap.nextEpisode):
		return b, tea.Batch(cmd, b.nextEpisode(id, content))
	}

	return b, cmd
}

// Synthetic gesture of one key press, fast and long enough to register.
const (
	swipeVelocity = 800.0
	swipeDistance = 80.0
)

func (b *statefulBubble) moveCursor(delta int) tea.Cmd {
	last := b.pager.Len() - 1
	if last < 0 {
		return nil
	}

	next := util.Clamp(b.cursor+delta, 0, last)
	if next == b.cursor {
		if delta > 0 && !b.pager.HasMore() {
			return notify("End of feed")
		}
		return nil
	}

	b.cursor = next
	return b.mountWindow()
}

func (b *statefulBubble) onChange(change feed.Change) tea.Cmd {
	switch change.Kind {
	case feed.PageLoaded:
		if change.Page.Number == 1 && b.state == feedState {
			b.cursor = 0
		}
		if b.state == feedState {
			return b.mountWindow()
		}
	case feed.PrefetchFailed:
		return notify(fmt.Sprintf("Loading more failed, press L to retry: %v", change.Err))
	}
	return nil
}

func (b *statefulBubble) onEvent(event playback.Event) tea.Cmd {
	id, ok := b.itemOf(event.Controller)
	if !ok {
		return nil
	}

	switch event.Kind {
	case playback.PaywallReached:
		b.paywalls[id] = event.Route
		return notify(fmt.Sprintf("Free preview ended. Press b to buy the %s, enter to close", event.Route.Kind))
	case playback.PaywallResolved:
		delete(b.paywalls, id)
	case playback.SeekDenied:
		return notify(fmt.Sprintf("Locked: %s", event.Reason))
	case playback.EngineFailed:
		return notify(fmt.Sprintf("Playback failed: %v", event.Err))
	case playback.SpeedChanged:
		return notify(fmt.Sprintf("Speed %gx", event.Speed))
	}
	return nil
}

// itemOf finds the feed item a controller is mounted for.
func (b *statefulBubble) itemOf(controller string) (string, bool) {
	for id, c := range b.players {
		if c.ID() == controller {
			return id, true
		}
	}
	return "", false
}

func (b *statefulBubble) updateHistory(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		items := lo.Map(msg, func(e *history.Entry, _ int) list.Item {
			return &listItem{internal: e}
		})
		return b, tea.Batch(cmd, b.historyC.SetItems(items))
	case tea.KeyMsg:
		if b.historyC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, cmd
		case bubblesKey.Matches(msg, b.keymap.remove):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return b, cmd
			}
			entry := item.internal.(*history.Entry)
			if err := history.Remove(entry.ContentID); err != nil {
				return b, tea.Batch(cmd, notify(fmt.Sprintf("Remove failed: %v", err)))
			}
			b.historyC.RemoveItem(b.historyC.Index())
			return b, cmd
		}
	}

	var listCmd tea.Cmd
	b.historyC, listCmd = b.historyC.Update(msg)
	return b, tea.Batch(cmd, listCmd)
}

func (b *statefulBubble) updateError(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.pager.Len() == 0 {
				b.setState(loadingState)
				return b, tea.Batch(cmd, b.startLoading(), b.loadFeed())
			}
			b.previousState()
		}
	}
	return b, cmd
}

func notify(msg string) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
