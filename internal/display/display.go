package display

import (
	"fmt"
	"os"
	"strings"

	"chatterm/internal/markdown"
	"chatterm/internal/service"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

func Header(text string) {
	fmt.Printf("\n%s%s%s\n", Bold+Cyan, text, Reset)
	fmt.Println(strings.Repeat("─", min(len(text)+4, 80)))
}

func SubHeader(text string) {
	fmt.Printf("%s%s%s\n", Bold+White, text, Reset)
}

func Success(text string) {
	fmt.Printf("%s✓%s %s\n", Green, Reset, text)
}

func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s✗%s %s\n", Red, Reset, text)
}

func Warn(text string) {
	fmt.Printf("%s!%s %s\n", Yellow, Reset, text)
}

func Info(label, value string) {
	fmt.Printf("  %s%-20s%s %s\n", Dim, label, Reset, value)
}

func Spinner(text string) {
	fmt.Printf("\r%s⟳%s %s", Yellow, Reset, text)
}

func ClearLine() {
	fmt.Print("\r\033[K")
}

// BlockKindLabel colors a block kind name for structure dumps.
func BlockKindLabel(k markdown.Kind) string {
	colors := map[markdown.Kind]string{
		markdown.KindHeading:      Bold + Cyan,
		markdown.KindCode:         Green,
		markdown.KindBulletList:   Magenta,
		markdown.KindNumberedList: Magenta,
		markdown.KindBlockquote:   Blue,
		markdown.KindParagraph:    White,
		markdown.KindSpacer:       Gray,
	}
	if c, ok := colors[k]; ok {
		return c + k.String() + Reset
	}
	return Gray + k.String() + Reset
}

// DescribeBlocks renders a one-line-per-block outline of blocks, e.g.
//
//	1  heading(2)     Title
//	2  bullet_list    3 items
func DescribeBlocks(blocks []markdown.Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		kind := b.Kind.String()
		if b.Kind == markdown.KindHeading {
			kind = fmt.Sprintf("%s(%d)", kind, b.Level)
		}
		label := strings.Replace(BlockKindLabel(b.Kind), b.Kind.String(), kind, 1)
		pad := strings.Repeat(" ", max(16-len(kind), 1))
		fmt.Fprintf(&sb, "%s%3d%s  %s%s%s\n", Dim, i+1, Reset, label, pad, blockSummary(b))
	}
	return sb.String()
}

func blockSummary(b markdown.Block) string {
	switch b.Kind {
	case markdown.KindCode:
		lines := strings.Count(b.Content, "\n") + 1
		if b.Content == "" {
			lines = 0
		}
		return fmt.Sprintf("%s, %s", b.Label(), plural(lines, "line"))
	case markdown.KindBulletList, markdown.KindNumberedList:
		return plural(len(b.Items), "item")
	case markdown.KindBlockquote:
		return plural(len(b.Lines), "line")
	case markdown.KindSpacer:
		return ""
	}
	return service.Summarize(markdown.PlainText(markdown.ParseInline(b.Text)), 60)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// ToolStateLabel renders a tool invocation state.
func ToolStateLabel(s service.ToolState) string {
	labels := map[service.ToolState]string{
		service.ToolStreaming: Yellow + "⟳ Streaming" + Reset,
		service.ToolCall:      Cyan + "⚙ Running" + Reset,
		service.ToolResult:    Green + "✓ Done" + Reset,
	}
	if label, ok := labels[s]; ok {
		return label
	}
	return Gray + string(s) + Reset
}
