package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Glamour renders text with glamour's full CommonMark renderer. It is the
// reference output that `render --engine glamour` and mdpreview compare
// the in-house renderer against.
func Glamour(text string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating glamour renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("rendering with glamour: %w", err)
	}
	return out, nil
}
