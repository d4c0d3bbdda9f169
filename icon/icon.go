// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
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

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
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

// Icon identifies a UI symbol in the global registry.
type Icon int

// Registered icons.
const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Info
	Player
	Lyrics
	Lua
)

var icons = map[Icon]*iconDef{
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "+", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "x", kaomoji: "(×_×)", squares: "🟥"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "~", kaomoji: "(・_・;)", squares: "🟦"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!", kaomoji: "(•ˋ _ ˊ•)", squares: "🟨"},
	Info:     {emoji: "ℹ️", nerd: "\uf05a", plain: "i", kaomoji: "(°ロ°)", squares: "🟪"},
	Player:   {emoji: "🎧", nerd: "\uf025", plain: ">", kaomoji: "ヾ(⌐■_■)ノ♪", squares: "🟫"},
	Lyrics:   {emoji: "🎤", nerd: "\uf130", plain: "#", kaomoji: "♪(´▽｀)", squares: "⬜"},
	Lua:      {emoji: "🌙", nerd: "\ue620", plain: "lua", kaomoji: "(◕‿◕)", squares: "🔵"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}
