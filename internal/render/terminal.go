// Package render turns scanned markdown blocks into display output: ANSI
// text for the terminal and sanitized HTML for export.
package render

import (
	"fmt"
	"strings"

	"chatterm/internal/markdown"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DefaultCodeTheme is the chroma style used when none is configured.
const DefaultCodeTheme = "monokai"

// Terminal renders blocks as ANSI-styled text.
type Terminal struct {
	// Width caps the code block frame. Zero means 80.
	Width int
	// CodeTheme is a chroma style name. "none" disables highlighting.
	CodeTheme string
}

func NewTerminal(width int, codeTheme string) *Terminal {
	if codeTheme == "" {
		codeTheme = DefaultCodeTheme
	}
	return &Terminal{Width: width, CodeTheme: codeTheme}
}

// RenderString scans text and renders the result.
func (t *Terminal) RenderString(text string) string {
	return t.Render(markdown.Scan(text))
}

// Render renders blocks in order, one or more lines per block. Code blocks
// are numbered from 1 in the order they appear.
func (t *Terminal) Render(blocks []markdown.Block) string {
	var out []string
	codeIdx := 0

	for _, b := range blocks {
		switch b.Kind {
		case markdown.KindCode:
			codeIdx++
			out = append(out, t.renderCode(b, codeIdx))

		case markdown.KindHeading:
			style := h3Style
			switch b.Level {
			case 1:
				style = h1Style
			case 2:
				style = h2Style
			}
			out = append(out, Inline(b.Text, style))

		case markdown.KindBulletList:
			for _, item := range b.Items {
				out = append(out, "  "+markerStyle.Render("•")+" "+Inline(item, bodyStyle))
			}

		case markdown.KindNumberedList:
			for i, item := range b.Items {
				out = append(out, "  "+markerStyle.Render(fmt.Sprintf("%d.", i+1))+" "+Inline(item, bodyStyle))
			}

		case markdown.KindBlockquote:
			for _, line := range b.Lines {
				out = append(out, "  "+markerStyle.Render("│")+" "+Inline(line, quoteStyle))
			}

		case markdown.KindParagraph:
			out = append(out, Inline(b.Text, bodyStyle))

		case markdown.KindSpacer:
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}

func (t *Terminal) frameWidth() int {
	if t.Width <= 0 {
		return 80
	}
	return t.Width
}

// renderCode draws a code block inside a left-gutter frame:
//
//	┌─ go ─────────── #1
//	│ fmt.Println("hi")
//	└──
func (t *Terminal) renderCode(b markdown.Block, idx int) string {
	label := Sanitize(b.Label())
	tag := fmt.Sprintf("#%d", idx)

	// Header spans the content, at least 24 columns, at most the frame.
	span := min(max(longestLine(b.Content)+2, 24), t.frameWidth())
	fill := max(span-runewidth.StringWidth(label)-runewidth.StringWidth(tag)-5, 1)

	var sb strings.Builder
	sb.WriteString(frameStyle.Render("┌─ ") + frameLabel.Render(label))
	sb.WriteString(frameStyle.Render(" "+strings.Repeat("─", fill)+" ") + frameTagStyle.Render(tag) + "\n")

	for _, line := range strings.Split(t.highlight(b.Content, b.Language), "\n") {
		sb.WriteString(frameStyle.Render("│") + " " + line + "\n")
	}

	sb.WriteString(frameStyle.Render("└──"))
	return sb.String()
}

func (t *Terminal) highlight(code, language string) string {
	plain := func() string {
		lines := strings.Split(Sanitize(code), "\n")
		for i, l := range lines {
			lines[i] = bodyStyle.Render(l)
		}
		return strings.Join(lines, "\n")
	}

	if t.CodeTheme == "none" || strings.TrimSpace(code) == "" {
		return plain()
	}

	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(t.CodeTheme)
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, Sanitize(code))
	if err != nil {
		return plain()
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return plain()
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Inline renders raw inline markdown with style as the surrounding text
// style. Emphasis spans add to it; code spans and links use their own colors.
func Inline(raw string, style lipgloss.Style) string {
	var sb strings.Builder

	for _, s := range markdown.ParseInline(raw) {
		text := Sanitize(s.Text)
		switch s.Kind {
		case markdown.SpanBold:
			sb.WriteString(style.Bold(true).Render(text))
		case markdown.SpanItalic:
			sb.WriteString(style.Italic(true).Render(text))
		case markdown.SpanCode:
			sb.WriteString(codeSpanStyle.Render(text))
		case markdown.SpanLink:
			sb.WriteString(linkStyle.Render(text + " ("))
			sb.WriteString(linkStyle.Underline(true).Render(Sanitize(s.Href)))
			sb.WriteString(linkStyle.Render(")"))
		default:
			sb.WriteString(style.Render(text))
		}
	}

	return sb.String()
}

// CodeBlocks returns the code blocks among blocks, in display order. The
// nth element is the block labeled #n+1 by Render.
func CodeBlocks(blocks []markdown.Block) []markdown.Block {
	var out []markdown.Block
	for _, b := range blocks {
		if b.Kind == markdown.KindCode {
			out = append(out, b)
		}
	}
	return out
}

// Sanitize drops control characters other than tab so that model output
// cannot smuggle escape sequences into the terminal.
func Sanitize(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t' && r != '\n') || r == 0x7f || (r >= 0x80 && r < 0xa0)
}

func longestLine(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if w := runewidth.StringWidth(line); w > n {
			n = w
		}
	}
	return n
}

// StripANSI removes escape sequences, for width math and tests.
func StripANSI(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			i = j
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
