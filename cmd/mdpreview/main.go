package main

import (
	"fmt"
	"os"

	"chatterm/internal/render"
)

// ANSI color helpers
const (
	gray  = "\033[38;5;242m"
	bold  = "\033[1m"
	dim   = "\033[2m"
	reset = "\033[0m"
)

const sample = "# Release notes\n" +
	"\n" +
	"## What changed\n" +
	"- **Faster** startup and *smaller* binaries\n" +
	"- New `--width` flag, see [the docs](https://example.com/docs)\n" +
	"\n" +
	"### Steps\n" +
	"1. Install\n" +
	"2. Configure\n" +
	"\n" +
	"> Breaking: the config file moved.\n" +
	"> Run `chatterm config` to check.\n" +
	"\n" +
	"```go\n" +
	"func main() {\n" +
	"\tfmt.Println(\"hello\")\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"Nested lists, tables and `**bold inside code**` show where the two renderers differ.\n" +
	"\n" +
	"| a | b |\n" +
	"|---|---|\n" +
	"| 1 | 2 |\n"

func main() {
	text := sample
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "mdpreview: %v\n", err)
			os.Exit(1)
		}
		text = string(data)
	}

	const width = 80

	fmt.Println()
	fmt.Println(bold + "═══ Built-in renderer ═══" + reset)
	fmt.Println(dim + "line scanner + chroma, as used for chat replies" + reset)
	fmt.Println()
	fmt.Println(render.NewTerminal(width, render.DefaultCodeTheme).RenderString(text))

	fmt.Println()
	fmt.Println(bold + "═══ glamour ═══" + reset)
	fmt.Println(dim + "full CommonMark, for comparison" + reset)

	out, err := render.Glamour(text, width)
	if err != nil {
		fmt.Println(gray + "  glamour failed: " + err.Error() + reset)
		os.Exit(1)
	}
	fmt.Print(out)
}
