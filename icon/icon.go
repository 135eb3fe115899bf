// Package icon renders UI symbols in the configured variant.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/reelgate/reelgate/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Progress
	Lock
	Play
	Pause
	Muted
	Speed
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Fail:     {emoji: "💀", nerd: "", plain: "X", kaomoji: "(×﹏×)", squares: "🟥"},
	Success:  {emoji: "🎉", nerd: "", plain: "✓", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Progress: {emoji: "👾", nerd: "", plain: "~", kaomoji: "┐(￣ヘ￣;)┌", squares: "🟦"},
	Lock:     {emoji: "🔒", nerd: "", plain: "#", kaomoji: "(ー_ー)!!", squares: "🟧"},
	Play:     {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(•̀ᴗ•́)و", squares: "🟩"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(－_－) zzZ", squares: "🟨"},
	Muted:    {emoji: "🔇", nerd: "", plain: "m", kaomoji: "(ˇ_ˇ)", squares: "⬛"},
	Speed:    {emoji: "⏩", nerd: "", plain: ">>", kaomoji: "ε=ε=┌( >_<)┘", squares: "🟪"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}
