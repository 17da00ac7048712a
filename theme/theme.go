package theme

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// New returns the form theme used by interactive prompts.
func New() *huh.Theme {
	t := huh.ThemeDracula()

	light := catppuccin.Latte
	dark := catppuccin.Mocha
	var (
		subtext0 = lipgloss.AdaptiveColor{Light: light.Subtext0().Hex, Dark: dark.Subtext0().Hex}
		overlay1 = lipgloss.AdaptiveColor{Light: light.Overlay1().Hex, Dark: dark.Overlay1().Hex}
		green    = lipgloss.AdaptiveColor{Light: light.Green().Hex, Dark: dark.Green().Hex}
	)

	f := &t.Focused
	f.Title = f.Title.Foreground(green)
	f.Description = f.Description.Foreground(overlay1)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(subtext0)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(overlay1)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(subtext0)

	return t
}
