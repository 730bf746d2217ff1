package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chatterm/internal/api"
	"chatterm/internal/config"
	"chatterm/internal/display"
	"chatterm/internal/markdown"
	"chatterm/internal/render"
	"chatterm/internal/service"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// copyResetDelay is how long a code block shows as copied.
const copyResetDelay = 2 * time.Second

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// ─── Input dispatcher ───────────────────────────────────────────────────────

func (m model) dispatchInput(input string) (tea.Model, tea.Cmd) {
	if input == "?" {
		return m.cmdHelp()
	}
	if strings.HasPrefix(input, "/") {
		return m.dispatchCommand(input)
	}
	// Default: send as a chat message
	return m.cmdSend(input)
}

func (m model) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/h":
		return m.cmdHelp()
	case "/blocks":
		return m.cmdBlocks()
	case "/copy":
		return m.cmdCopy(args)
	case "/followup", "/f":
		return m.cmdFollowUp(args)
	case "/new":
		return m.cmdNew()
	case "/config":
		return m.cmdConfig()
	case "/set":
		return m.cmdSet(args)
	case "/clear":
		return m.cmdClear()
	case "/quit", "/exit", "/q":
		return m, tea.Quit
	default:
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Unknown command: %s. Type /help", cmd)))
	}
}

// ─── /help ──────────────────────────────────────────────────────────────────

func (m model) cmdHelp() (tea.Model, tea.Cmd) {
	pad := func(s string, w int) string {
		for len(s) < w {
			s += " "
		}
		return s
	}

	entries := [][2]string{
		{"/copy [n]", "Copy code block n of the last reply (default: last)"},
		{"/followup <n>", "Send follow-up suggestion n"},
		{"/blocks", "Show the block structure of the last reply"},
		{"/new", "Start a new conversation"},
		{"/set <key> <value>", "Change a setting (" + strings.Join(config.Keys, ", ") + ")"},
		{"/config", "Show current configuration"},
		{"/clear", "Clear the screen"},
		{"/quit", "Exit chatterm"},
	}

	lines := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render("  Shortcuts:")),
		tea.Println(""),
	}
	for _, e := range entries {
		lines = append(lines, tea.Println("  "+pad(hintKeyStyle.Render(e[0]), 30)+dimStyle.Render(e[1])))
	}
	lines = append(lines,
		tea.Println(""),
		tea.Println(dimStyle.Render("  Or just type a message to chat. Esc cancels a reply.")),
		tea.Println(""),
	)
	return m, tea.Sequence(lines...)
}

// ─── /config ────────────────────────────────────────────────────────────────

func (m model) cmdConfig() (tea.Model, tea.Cmd) {
	val := func(s string) string {
		if s == "" {
			return dimStyle.Render("(not set)")
		}
		return s
	}

	cmds := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render("  Configuration:")),
		tea.Println(fmt.Sprintf("    %-16s %s", "profile", config.ProfileName(m.profile))),
	}
	for _, key := range config.Keys {
		cmds = append(cmds, tea.Println(fmt.Sprintf("    %-16s %s", key, val(m.cfg.Get(key)))))
	}
	cmds = append(cmds,
		tea.Println(fmt.Sprintf("    %-16s %s", "conversation", m.conv.ID)),
		tea.Println(""),
	)
	return m, tea.Sequence(cmds...)
}

// ─── /set ───────────────────────────────────────────────────────────────────

func (m model) cmdSet(args []string) (tea.Model, tea.Cmd) {
	if len(args) < 2 {
		return m, tea.Sequence(
			tea.Println(""),
			tea.Println(dimStyle.Render("  Usage: /set <key> <value>")),
			tea.Println(dimStyle.Render("  Keys:  "+strings.Join(config.Keys, ", "))),
			tea.Println(""),
		)
	}

	key := strings.ToLower(args[0])
	value := strings.Join(args[1:], " ")

	if err := m.cfg.Set(key, value); err != nil {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ %v", err)))
	}
	if err := m.cfg.Save(); err != nil {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Failed to save config: %v", err)))
	}

	switch key {
	case "endpoint", "api_key", "model", "system":
		m.client = api.NewClient(m.cfg)
	case "code_theme":
		m.term = render.NewTerminal(m.term.Width, value)
	case "conversation_id":
		m.conv = service.NewConversation(value)
	}

	return m, tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ %s = %s", key, m.cfg.Get(key))))
}

// ─── /new ───────────────────────────────────────────────────────────────────

func (m model) cmdNew() (tea.Model, tea.Cmd) {
	m.conv = service.NewConversation("")
	m.copied = make(map[string]bool)
	return m, tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ New conversation %s", truncateID(m.conv.ID))))
}

// ─── /clear ─────────────────────────────────────────────────────────────────

func (m model) cmdClear() (tea.Model, tea.Cmd) {
	return m, tea.ClearScreen
}

// ─── /blocks ────────────────────────────────────────────────────────────────

func (m model) cmdBlocks() (tea.Model, tea.Cmd) {
	msg, ok := m.conv.LastAssistant()
	if !ok || strings.TrimSpace(msg.Text()) == "" {
		return m, tea.Println(dimStyle.Render("  No reply yet."))
	}

	outline := strings.TrimRight(display.DescribeBlocks(markdown.Scan(msg.Text())), "\n")
	return m, tea.Sequence(
		tea.Println(""),
		tea.Println(indentBlock(outline)),
		tea.Println(""),
	)
}

// ─── /copy ──────────────────────────────────────────────────────────────────

type copyResetMsg struct {
	key string
}

// codeBlockKey identifies the nth code block of a message.
func codeBlockKey(messageID string, n int) string {
	return fmt.Sprintf("%s/code-%d", messageID, n)
}

func (m model) cmdCopy(args []string) (tea.Model, tea.Cmd) {
	msg, ok := m.conv.LastAssistant()
	if !ok {
		return m, tea.Println(warnMsgStyle.Render("  ! Nothing to copy yet."))
	}

	blocks := render.CodeBlocks(markdown.Scan(msg.Text()))
	if len(blocks) == 0 {
		return m, tea.Println(warnMsgStyle.Render("  ! The last reply has no code blocks."))
	}

	n := len(blocks)
	if len(args) > 0 {
		v, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil || v < 1 || v > len(blocks) {
			return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ No code block %q (1-%d)", args[0], len(blocks))))
		}
		n = v
	}

	block := blocks[n-1]
	if err := writeClipboard(block.Content); err != nil {
		slog.Error("copying code block", "message", msg.ID, "block", n, "error", err)
		return m, tea.Println(warnMsgStyle.Render(fmt.Sprintf("  ! Could not copy to clipboard: %v", err)))
	}

	key := codeBlockKey(msg.ID, n)
	m.copied[key] = true
	return m, tea.Batch(
		tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ Copied #%d (%s)", n, block.Label()))),
		tea.Tick(copyResetDelay, func(time.Time) tea.Msg {
			return copyResetMsg{key: key}
		}),
	)
}

// ─── /followup ──────────────────────────────────────────────────────────────

func (m model) cmdFollowUp(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, tea.Sequence(followUpLines()...)
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(service.FollowUpSuggestions) {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Pick a suggestion from 1 to %d", len(service.FollowUpSuggestions))))
	}
	return m.cmdSend(service.FollowUpSuggestions[n-1])
}

// ─── Send ───────────────────────────────────────────────────────────────────

func (m model) cmdSend(prompt string) (tea.Model, tea.Cmd) {
	if m.client == nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ No endpoint configured. Use /set endpoint <url>"))
	}
	if err := m.cfg.Validate(); err != nil {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ %v", err)))
	}

	m.conv.AddUser(prompt)
	req := m.conv.Request()
	m.conv.BeginAssistant()

	ctx, cancel := context.WithCancel(context.Background())
	m.finishStream()
	m.mode = modeStreaming
	m.cancel = cancel
	m.status = "Thinking..."
	m.streamID++

	ch, waitCmd := beginStream(ctx, m.client, m.streamID, req)
	m.streamCh = ch

	return m, tea.Sequence(
		tea.Println(""),
		tea.Println(userPromptStyle.Render("  ❯ "+prompt)),
		tea.Println(""),
		waitCmd,
	)
}
