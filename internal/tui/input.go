package tui

import (
	"fmt"
	"strings"
)

// maxHistory bounds the number of remembered inputs.
const maxHistory = 1000

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/blocks", "Show the block structure of the last reply"},
	{"/clear", "Clear the screen"},
	{"/config", "Show current configuration"},
	{"/copy", "Copy a code block from the last reply"},
	{"/followup", "Send a follow-up suggestion"},
	{"/help", "Show all commands"},
	{"/new", "Start a new conversation"},
	{"/quit", "Exit chatterm"},
	{"/set", "Change a setting"},
}

// matchCommands returns the slash commands whose name starts with prefix.
func matchCommands(prefix string) []slashCmd {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "/" {
		return slashCommands
	}

	var matches []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, prefix) {
			matches = append(matches, c)
		}
	}
	return matches
}

func isExactCommand(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, c := range slashCommands {
		if c.name == value {
			return true
		}
	}
	return false
}

// ─── Command menu ───────────────────────────────────────────────────────────

// moveMenu shifts the menu selection by step, wrapping at both ends.
// It reports false when nothing matches the current input.
func (m *model) moveMenu(step int) bool {
	n := len(matchCommands(m.input.Value()))
	if n == 0 {
		return false
	}
	m.cmdMenuIdx = ((m.cmdMenuIdx+step)%n + n) % n
	return true
}

// acceptMenu completes the input with the selected command.
func (m *model) acceptMenu() bool {
	matches := matchCommands(m.input.Value())
	if len(matches) == 0 {
		return false
	}
	idx := m.cmdMenuIdx
	if idx < 0 || idx >= len(matches) {
		idx = 0
	}
	m.input.SetValue(matches[idx].name + " ")
	m.input.CursorEnd()
	m.closeMenu()
	return true
}

func (m *model) closeMenu() {
	m.cmdMenuOpen = false
	m.cmdMenuIdx = 0
}

func (m model) renderCommandMenu(matches []slashCmd) string {
	width := 0
	for _, c := range matches {
		width = max(width, len(c.name))
	}

	lines := make([]string, 0, len(matches)+1)
	for i, c := range matches {
		name := fmt.Sprintf("%-*s", width, c.name)
		if i == m.cmdMenuIdx {
			lines = append(lines, "  "+cmdSelectedNameStyle.Render(name)+"  "+cmdSelectedDescStyle.Render(c.desc))
			continue
		}
		lines = append(lines, "  "+cmdNameStyle.Render(name)+"  "+cmdDescStyle.Render(c.desc))
	}
	lines = append(lines, hintBarStyle.Render("  ↑↓ navigate  Tab/Enter select"))
	return strings.Join(lines, "\n")
}

// ─── History ────────────────────────────────────────────────────────────────

// pushHistory records a submitted input, skipping immediate repeats, and
// leaves browsing mode.
func (m *model) pushHistory(value string) {
	if n := len(m.history); n == 0 || m.history[n-1] != value {
		m.history = append(m.history, value)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.historyIdx = -1
	m.historySaved = ""
}

// browseHistory steps backwards (-1) or forwards (+1) through history.
// Stepping past the newest entry restores the draft that was being typed.
func (m *model) browseHistory(step int) bool {
	switch {
	case step < 0 && len(m.history) == 0:
		return false
	case step > 0 && m.historyIdx == -1:
		return false
	}

	switch {
	case m.historyIdx == -1:
		m.historySaved = m.input.Value()
		m.historyIdx = len(m.history) - 1
	case step < 0:
		m.historyIdx = max(m.historyIdx-1, 0)
	default:
		m.historyIdx++
	}

	if m.historyIdx >= len(m.history) {
		m.historyIdx = -1
		m.input.SetValue(m.historySaved)
		m.historySaved = ""
	} else {
		m.input.SetValue(m.history[m.historyIdx])
	}
	m.input.CursorEnd()
	return true
}

// syncInput reacts to edits of the input line: typing leaves history
// browsing, and a lone "/word" opens the command menu.
func (m *model) syncInput() {
	val := m.input.Value()
	if val == m.lastInputVal {
		return
	}
	m.lastInputVal = val

	if m.historyIdx != -1 && m.historyIdx < len(m.history) && m.history[m.historyIdx] != val {
		m.historyIdx = -1
		m.historySaved = ""
	}
	m.cmdMenuOpen = strings.HasPrefix(val, "/") && !strings.Contains(val, " ")
	m.cmdMenuIdx = 0
}
