package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/feed"
	"github.com/reelgate/reelgate/internal/ui"
	"github.com/reelgate/reelgate/playback"
	"github.com/reelgate/reelgate/player"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
)

// window is how many feed items around the cursor keep a mounted player.
const window = 1

type statefulBubble struct {
	state     state
	prevState state
	loading   bool

	keymap *statefulKeymap

	// components
	spinnerC spinner.Model
	historyC list.Model
	helpC    help.Model
	notifier *ui.Model

	options   *Options
	ledger    *access.Ledger
	pager     *feed.Pager
	scheduler *feed.Scheduler
	playback  playback.Config

	// players holds one controller per mounted feed item id.
	players map[string]*playback.Controller
	cursor  int
	// paywalls holds the purchase route of every open paywall by feed item id.
	paywalls map[string]access.Route

	// messages from controllers and the scheduler, drained by waitForMessage
	messages chan tea.Msg

	ctx    context.Context
	cancel context.CancelFunc

	lastError     error
	width, height int
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	if b.state != loadingState {
		b.prevState = b.state
	}
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	b.setState(b.prevState)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

// post hands a message to the program without blocking the sender on the event loop.
func (b *statefulBubble) post(msg tea.Msg) {
	select {
	case b.messages <- msg:
	case <-b.ctx.Done():
	}
}

// current returns the controller of the item under the cursor.
func (b *statefulBubble) current() (*playback.Controller, string, bool) {
	item, ok := b.pager.At(b.cursor)
	if !ok {
		return nil, "", false
	}
	c, ok := b.players[item.ID]
	return c, item.ID, ok
}

func newBubble(options *Options) *statefulBubble {
	ctx, cancel := context.WithCancel(context.Background())

	bubble := &statefulBubble{
		keymap:   newStatefulKeymap(),
		notifier: &ui.Model{},
		options:  options,
		ledger:   access.NewLedger(),
		playback: playback.LoadConfig(),
		players:  make(map[string]*playback.Controller),
		paywalls: make(map[string]access.Route),
		messages: make(chan tea.Msg, 256),
		ctx:      ctx,
		cancel:   cancel,
	}

	bubble.pager = feed.NewPager(options.Client, options.PageSize)
	bubble.scheduler = feed.NewScheduler(nil, feed.LoadConfig(), bubble.pager, func(change feed.Change) {
		bubble.post(changeMsg(change))
	})

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.historyC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.historyC.KeyMap = bubble.keymap.forList()
	bubble.historyC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
	bubble.historyC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return bubble.keymap.FullHelp()[0]
	}
	bubble.historyC.Title = "Watch History"
	bubble.historyC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1)
	bubble.historyC.Styles.NoItems = paddingStyle
	bubble.historyC.StatusMessageLifetime = 3 * time.Second
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}

// newController builds a controller for a feed item, wired to the ledger and the program.
func (b *statefulBubble) newController(engine player.Engine) *playback.Controller {
	return playback.New(playback.Options{
		Engine: engine,
		Ledger: b.ledger,
		UserID: b.options.Client.UserID(),
		Config: b.playback,
		Observer: func(event playback.Event) {
			b.post(eventMsg(event))
		},
		Watched: b.watched,
	})
}

// close tears down the scheduler and every mounted player.
func (b *statefulBubble) close() {
	b.cancel()
	b.scheduler.Close()
	for id, c := range b.players {
		util.Ignore(c.Close)
		delete(b.players, id)
	}
}
