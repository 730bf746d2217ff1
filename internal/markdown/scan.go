package markdown

import (
	"regexp"
	"strings"
)

const fence = "```"

// space is the whitespace class list markers accept: ASCII whitespace
// including vertical tab, Unicode space separators such as NBSP, the line
// and paragraph separators, and the byte-order mark.
const space = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	bulletRe   = regexp.MustCompile(`^` + space + `*[-*+]` + space)
	numberedRe = regexp.MustCompile(`^` + space + `*\d+\.` + space)
)

// headingMarkers are matched as exact prefixes of the untrimmed line, so
// "## x" never satisfies the "# " test and vice versa.
var headingMarkers = [...]string{"# ", "## ", "### "}

// Scan splits text into display blocks in a single forward pass. It never
// fails: unterminated fences swallow the rest of the input, unmatched
// markers fall through to paragraphs.
func Scan(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, fence) {
			lang := strings.TrimSpace(trimmed[len(fence):])
			var code []string
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), fence) {
					break
				}
				code = append(code, lines[i])
			}
			blocks = append(blocks, CodeBlock(lang, strings.Join(code, "\n")))
			continue
		}

		if level, text, ok := heading(line); ok {
			blocks = append(blocks, Heading(level, text))
			continue
		}

		if bulletRe.MatchString(line) {
			var items []string
			items, i = takeRun(lines, i, bulletRe.MatchString, func(s string) string {
				return bulletRe.ReplaceAllLiteralString(s, "")
			})
			blocks = append(blocks, BulletList(items...))
			continue
		}

		if numberedRe.MatchString(line) {
			var items []string
			items, i = takeRun(lines, i, numberedRe.MatchString, func(s string) string {
				return numberedRe.ReplaceAllLiteralString(s, "")
			})
			blocks = append(blocks, NumberedList(items...))
			continue
		}

		if isQuote(line) {
			var quoted []string
			quoted, i = takeRun(lines, i, isQuote, func(s string) string { return s[2:] })
			blocks = append(blocks, Blockquote(quoted...))
			continue
		}

		if trimmed != "" {
			blocks = append(blocks, Paragraph(line))
			continue
		}

		if i < len(lines)-1 && strings.TrimSpace(lines[i+1]) != "" {
			blocks = append(blocks, Spacer())
		}
	}

	return blocks
}

func heading(line string) (level int, text string, ok bool) {
	for n, marker := range headingMarkers {
		if strings.HasPrefix(line, marker) {
			return n + 1, line[len(marker):], true
		}
	}
	return 0, "", false
}

func isQuote(line string) bool {
	return strings.HasPrefix(line, "> ")
}

// takeRun consumes consecutive lines starting at i that satisfy match and
// returns them stripped, plus the index of the last consumed line.
func takeRun(lines []string, i int, match func(string) bool, strip func(string) string) ([]string, int) {
	var out []string
	for ; i < len(lines) && match(lines[i]); i++ {
		out = append(out, strip(lines[i]))
	}
	return out, i - 1
}
