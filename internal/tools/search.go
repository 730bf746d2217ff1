package tools

import (
	"fmt"
	"strings"

	"chatterm/internal/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const maxCardWidth = 72

// RenderSearch draws one card per result under a count header.
func (r *Renderer) RenderSearch(results []SearchResult) string {
	if len(results) == 0 {
		return mutedStyle.Render("🔍 No search results found")
	}

	cardWidth := min(r.width(), maxCardWidth)
	inner := max(cardWidth-4, 10) // border + padding

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("🔍 Search Results (%d)", len(results))))
	for _, res := range results {
		title := clampLines(render.Sanitize(orDefault(res.Title, "Untitled")), inner, 2)
		snippet := clampLines(render.Sanitize(orDefault(res.Snippet, "No description available")), inner, 3)
		source := runewidth.Truncate(render.Sanitize(orDefault(res.Source, "Unknown source")), inner, "…")

		body := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			mutedStyle.Render(snippet),
			mutedStyle.Faint(true).Render(source),
		)
		sb.WriteString("\n")
		sb.WriteString(cardStyle.Width(inner + 2).Render(body))
	}
	return sb.String()
}

func searchText(result string) string {
	return mutedStyle.Render("🤖 " + render.Sanitize(result))
}

// clampLines word-wraps s to width and keeps at most n lines, marking a
// cut with an ellipsis.
func clampLines(s string, width, n int) string {
	wrapped := wrap.String(wordwrap.String(strings.Join(strings.Fields(s), " "), width), width)
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= n {
		return wrapped
	}
	lines = lines[:n]
	last := strings.TrimRight(lines[n-1], " ")
	if runewidth.StringWidth(last)+1 > width {
		last = runewidth.Truncate(last, width-1, "")
	}
	lines[n-1] = last + "…"
	return strings.Join(lines, "\n")
}
