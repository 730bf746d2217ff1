package tui

import (
	"fmt"
	"strings"

	"chatterm/internal/render"
	"chatterm/internal/service"
)

// ─── Welcome Screen ─────────────────────────────────────────────────────────

func renderWelcome(version, endpoint, conversationID string, width int) string {
	titleLine := logoTitleStyle.Render("chatterm") + " " + versionStyle.Render("v"+version)

	endpointDisplay := endpoint
	if len(endpointDisplay) > 40 {
		endpointDisplay = endpointDisplay[:37] + "..."
	}
	infoLine := welcomeInfoLabel.Render(fmt.Sprintf("%s · %s", endpointDisplay, truncateID(conversationID)))
	hintLine := welcomeHintStyle.Render("Ask anything, or type /help")

	return fmt.Sprintf("\n%s\n\n%s\n%s\n%s\n", renderLogo(), titleLine, infoLine, hintLine)
}

var logoLines = []string{
	"╭────────────────╮",
	"│   ●   ●   ●    │",
	"╰──┬─────────────╯",
	"   ╰──",
}

func renderLogo() string {
	lines := make([]string, len(logoLines))
	for i, line := range logoLines {
		lines[i] = "  " + colorizeLogoLine(line)
	}
	return strings.Join(lines, "\n")
}

const (
	logoPlain = iota
	logoBubble
	logoDot
)

func logoClass(r rune) int {
	switch {
	case r == '●':
		return logoDot
	case r >= 0x2500 && r <= 0x257f:
		return logoBubble
	}
	return logoPlain
}

// colorizeLogoLine paints runs of box-drawing characters as the bubble
// and the dots in the accent color.
func colorizeLogoLine(line string) string {
	var out strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); {
		class := logoClass(runes[i])
		j := i + 1
		for j < len(runes) && logoClass(runes[j]) == class {
			j++
		}
		run := string(runes[i:j])
		switch class {
		case logoBubble:
			run = logoBubbleStyle.Render(run)
		case logoDot:
			run = logoDotStyle.Render(run)
		}
		out.WriteString(run)
		i = j
	}
	return out.String()
}

// ─── Messages ───────────────────────────────────────────────────────────────

// renderMarkdown scans text and renders it indented under the assistant
// label. Returns "" for blank text.
func renderMarkdown(term *render.Terminal, text string) string {
	text = service.TrimTrailingBlankLines(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return strings.TrimRight(indentText(term.RenderString(text), "  "), "\n")
}

// renderPreview renders the text streamed so far, keeping only the last
// maxLines lines so the live region never outgrows the terminal.
func renderPreview(term *render.Terminal, text string, maxLines int) string {
	out := renderMarkdown(term, text)
	if out == "" {
		return ""
	}
	return service.TailLines(out, max(maxLines, 1))
}

func indentText(text, prefix string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// truncateID shortens a UUID-like id to its first segment.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
