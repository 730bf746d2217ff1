package tui

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive chat. The program runs inline: finished
// replies scroll above the prompt instead of taking over the screen.
func Run(version, profile string) error {
	final, err := tea.NewProgram(initialModel(version, profile)).Run()

	if m, ok := final.(model); ok {
		if m.cancel != nil {
			m.cancel()
		}
		slog.Debug("chat session ended", "conversation", m.conv.ID, "messages", len(m.conv.Messages))
	}
	if err != nil {
		return fmt.Errorf("running chat UI: %w", err)
	}
	return nil
}
