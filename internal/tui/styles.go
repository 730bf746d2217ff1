package tui

import (
	"chatterm/internal/render"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent = render.ColorAccent
	good   = render.ColorGood
	warn   = render.ColorWarn
	bad    = render.ColorBad
	info   = render.ColorInfo
	muted  = render.ColorMuted
	faint  = render.ColorFaint
	strong = render.ColorStrong
)

// Welcome screen.
var (
	logoBubbleStyle  = lipgloss.NewStyle().Foreground(muted)
	logoDotStyle     = lipgloss.NewStyle().Foreground(accent).Bold(true)
	logoTitleStyle   = lipgloss.NewStyle().Foreground(strong).Bold(true)
	versionStyle     = lipgloss.NewStyle().Foreground(muted)
	welcomeHintStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	welcomeInfoLabel = lipgloss.NewStyle().Foreground(muted)
)

// Prompt line and hint bar.
var (
	promptSymbol  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(accent)
	spinnerStyle  = lipgloss.NewStyle().Foreground(accent)
	hintBarStyle  = lipgloss.NewStyle().Foreground(muted)
	hintKeyStyle  = lipgloss.NewStyle().Foreground(muted).Bold(true)
	copiedHint    = lipgloss.NewStyle().Foreground(good)
	separatorLine = lipgloss.NewStyle().Foreground(faint)
)

// Slash-command menu. The selected row is drawn reversed.
var (
	cmdNameStyle         = lipgloss.NewStyle().Foreground(accent)
	cmdDescStyle         = lipgloss.NewStyle().Foreground(muted)
	cmdSelectedNameStyle = cmdNameStyle.Bold(true).Reverse(true)
	cmdSelectedDescStyle = lipgloss.NewStyle().Foreground(strong).Bold(true)
)

// Transcript lines printed above the prompt.
var (
	successMsgStyle     = lipgloss.NewStyle().Foreground(good)
	errorMsgStyle       = lipgloss.NewStyle().Foreground(bad)
	warnMsgStyle        = lipgloss.NewStyle().Foreground(warn)
	statusStyle         = lipgloss.NewStyle().Foreground(warn)
	userPromptStyle     = lipgloss.NewStyle().Foreground(accent).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(info).Bold(true)
	followUpStyle       = lipgloss.NewStyle().Foreground(accent)
	dimStyle            = lipgloss.NewStyle().Foreground(muted)
)
