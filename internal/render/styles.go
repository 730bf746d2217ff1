package render

import "github.com/charmbracelet/lipgloss"

// Palette shared by every terminal surface. Each color has a variant for
// light and for dark backgrounds.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	ColorGood   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "78"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "220"}
	ColorBad    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "196"}
	ColorInfo   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "111"}
	ColorBody   = lipgloss.AdaptiveColor{Light: "236", Dark: "252"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "245", Dark: "242"}
	ColorFaint  = lipgloss.AdaptiveColor{Light: "252", Dark: "238"}
	ColorStrong = lipgloss.AdaptiveColor{Light: "232", Dark: "255"}
)

// Block and span styles for rendered markdown. All of them derive from
// base, which leaves tabs alone so code keeps its indentation.
var (
	base = lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)

	bodyStyle = base.Foreground(ColorBody)
	h1Style   = base.Foreground(ColorStrong).Bold(true).Underline(true)
	h2Style   = base.Foreground(ColorStrong).Bold(true)
	h3Style   = bodyStyle.Bold(true)

	quoteStyle  = base.Foreground(ColorMuted).Italic(true)
	markerStyle = base.Foreground(ColorAccent)

	codeSpanStyle = base.Foreground(ColorWarn)
	linkStyle     = base.Foreground(ColorInfo)

	frameStyle    = base.Foreground(ColorGood)
	frameLabel    = frameStyle.Bold(true)
	frameTagStyle = base.Foreground(ColorMuted)
)
