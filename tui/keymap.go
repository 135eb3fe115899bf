package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/reelgate/reelgate/color"
	"github.com/reelgate/reelgate/style"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	up, down,
	slower, faster,
	rewind, forward,
	playPause, mute, fullscreen,
	gift, buy, unlock,
	nextEpisode,
	refresh, loadMore,
	history, remove,
	back,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "previous"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next"),
		),
		slower: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "swipe slower"),
		),
		faster: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "swipe faster"),
		),
		rewind: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "-5s"),
		),
		forward: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "+5s"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		gift: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "gift"),
		),
		buy: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp(style.Fg(color.Orange)("b"), style.Fg(color.Orange)("buy")),
		),
		unlock: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "close paywall"),
		),
		nextEpisode: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "next episode"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		loadMore: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "retry loading"),
		),
		history: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "history"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case feedState:
		return h(k.up, k.down, k.playPause, k.buy, k.showHelp, k.quit),
			h(k.up, k.down, k.playPause, k.rewind, k.forward, k.slower, k.faster,
				k.mute, k.fullscreen, k.gift, k.buy, k.unlock, k.nextEpisode,
				k.refresh, k.loadMore, k.history, k.quit)
	case historyState:
		return to2(h(k.remove, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
