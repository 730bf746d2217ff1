package tools

import (
	"chatterm/internal/render"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorUp    = render.ColorGood
	colorDown  = render.ColorBad
	colorMuted = render.ColorMuted
	colorFg    = render.ColorBody
	colorCard  = render.ColorFaint
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorFg)

var mutedStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var placeholderStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

var upStyle = lipgloss.NewStyle().
	Foreground(colorUp)

var downStyle = lipgloss.NewStyle().
	Foreground(colorDown)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorCard).
	Padding(0, 1)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorCard).
	Padding(0, 1)
