package style

import "github.com/charmbracelet/lipgloss"

var (
	Base    = lipgloss.Color("#1e1e2e")
	Text    = lipgloss.Color("#cdd6f4")
	Overlay = lipgloss.Color("#6c7086")
	Surface = lipgloss.Color("#313244")

	Mauve  = lipgloss.Color("#cba6f7")
	Red    = lipgloss.Color("#f38ba8")
	Peach  = lipgloss.Color("#fab387")
	Yellow = lipgloss.Color("#f9e2af")

	AccentColor = Mauve
	HiRed       = Red
	FaintColor  = Overlay
	BorderColor = Surface
)

// Progress bar colors.
var (
	PlayedColor    = AccentColor
	RemainingColor = Surface
	LockedColor    = Red
	HeadColor      = Text
	TargetColor    = Yellow
	PaywallColor   = Peach
)
