package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chatterm/internal/api"
	"chatterm/internal/config"
	"chatterm/internal/render"
	"chatterm/internal/service"
	"chatterm/internal/tools"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ─── App mode ───────────────────────────────────────────────────────────────

type appMode int

const (
	modeIdle appMode = iota
	modeStreaming
)

const inputPlaceholder = "Ask anything or type /help..."

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// App state
	mode    appMode
	cfg     *config.Config
	client  api.ChatAPI
	conv    *service.Conversation
	term    *render.Terminal
	tools   *tools.Renderer
	version string
	profile string
	loadErr error

	// Streaming state
	streamID      int            // id of the active stream; stale messages carry older ids
	streamCh      <-chan tea.Msg // nil when no stream is active
	cancel        context.CancelFunc
	preview       string          // text of the current step not yet printed above the prompt
	status        string          // spinner line text
	answerStarted bool            // assistant label printed for the current reply
	printedTools  map[string]bool // tool call id -> result printed

	// Copy state: "<messageID>/code-<n>" -> recently copied
	copied map[string]bool

	// UI state
	ready        bool
	cmdMenuIdx   int  // selected index in command menu
	cmdMenuOpen  bool // whether the command menu is visible
	lastInputVal string

	// Command history
	history      []string // stored command history
	historyIdx   int      // current position in history (-1 = not browsing)
	historySaved string   // saved input value when entering history mode
}

func initialModel(version, profile string) model {
	cfg, err := config.Load(profile)
	if err != nil {
		slog.Warn("loading config", "profile", profile, "error", err)
		cfg = &config.Config{
			Endpoint:       config.DefaultEndpoint,
			ConversationID: config.DefaultConversationID,
			CodeTheme:      config.DefaultCodeTheme,
			Profile:        profile,
		}
	}

	m := newModel(version, cfg, api.NewClient(cfg))
	m.profile = profile
	m.loadErr = err
	return m
}

func newModel(version string, cfg *config.Config, client api.ChatAPI) model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = cursorStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return model{
		input:        ti,
		spinner:      sp,
		version:      version,
		cfg:          cfg,
		client:       client,
		conv:         service.NewConversation(cfg.ConversationID),
		term:         render.NewTerminal(0, cfg.CodeTheme),
		tools:        tools.NewRenderer(0),
		mode:         modeIdle,
		printedTools: make(map[string]bool),
		copied:       make(map[string]bool),
		historyIdx:   -1,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 6
		m.term.Width = max(m.width-4, 20)
		m.tools.Width = max(m.width-4, 20)

		if !m.ready {
			m.ready = true
			// Print welcome header on first render
			welcome := renderWelcome(m.version, m.cfg.Endpoint, m.conv.ID, m.width)
			cmds = append(cmds, tea.Println(welcome))
			if m.loadErr != nil {
				cmds = append(cmds, tea.Println(warnMsgStyle.Render(fmt.Sprintf("  ! Using defaults: %v", m.loadErr))))
			}
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.mode == modeStreaming {
				cmd := m.cancelStream()
				return m, cmd
			}
			return m, tea.Quit

		case tea.KeyEsc:
			if m.mode == modeStreaming {
				cmd := m.cancelStream()
				return m, cmd
			}
			if m.cmdMenuOpen {
				m.closeMenu()
				return m, nil
			}

		case tea.KeyUp, tea.KeyDown:
			if m.mode != modeIdle {
				break
			}
			step := 1
			if msg.Type == tea.KeyUp {
				step = -1
			}
			if m.cmdMenuOpen && m.moveMenu(step) {
				return m, nil
			}
			if !m.cmdMenuOpen && m.browseHistory(step) {
				return m, nil
			}

		case tea.KeyTab:
			if m.mode == modeIdle && m.cmdMenuOpen {
				m.acceptMenu()
				return m, nil
			}

		case tea.KeyEnter:
			if m.mode == modeStreaming {
				return m, nil
			}
			if m.cmdMenuOpen && !isExactCommand(m.input.Value()) && m.acceptMenu() {
				return m, nil
			}

			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			m.pushHistory(value)
			m.input.SetValue("")
			m.closeMenu()
			return m.dispatchInput(value)
		}

	// ── Stream messages ───────────────────────────────────────────────
	case streamEventMsg:
		if msg.id != m.streamID || m.streamCh == nil {
			return m, nil
		}
		if printCmd := m.handleStreamEvent(msg.ev); printCmd != nil {
			cmds = append(cmds, printCmd)
		}
		cmds = append(cmds, waitForStream(m.streamCh, m.streamID))
		return m, tea.Batch(cmds...)

	case streamDoneMsg:
		if msg.id != m.streamID || m.streamCh == nil {
			return m, nil
		}
		flushCmds := m.flushPreview()
		flushCmds = append(flushCmds, followUpLines()...)
		m.finishStream()
		m.rememberConversation()
		return m, tea.Sequence(flushCmds...)

	case streamErrMsg:
		if msg.id != m.streamID || m.streamCh == nil {
			return m, nil
		}
		slog.Error("chat stream failed", "conversation", m.conv.ID, "error", msg.err)
		flushCmds := m.flushPreview()
		flushCmds = append(flushCmds, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Stream error: %v", msg.err))))
		m.finishStream()
		return m, tea.Sequence(flushCmds...)

	// ── Copy feedback ─────────────────────────────────────────────────
	case copyResetMsg:
		delete(m.copied, msg.key)
		return m, nil
	}

	// Update sub-components
	var cmd tea.Cmd
	if m.mode != modeStreaming {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.syncInput()

	return m, tea.Batch(cmds...)
}

// ─── View ───────────────────────────────────────────────────────────────────
//
// Inline mode: finished output is printed above via tea.Println. View shows
// the live preview of the reply being streamed, then the input prompt and
// hints.

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder

	if m.mode == modeStreaming {
		// Leave room for the spinner, separator and hint lines.
		if preview := renderPreview(m.term, m.preview, m.height-4); preview != "" {
			s.WriteString(preview)
			s.WriteString("\n")
		}
		status := m.status
		if status == "" {
			status = "Thinking..."
		}
		s.WriteString(m.spinner.View() + " " + statusStyle.Render(status))
	} else {
		s.WriteString(m.input.View())
	}
	s.WriteString("\n")

	sepWidth := min(m.width, 80)
	if sepWidth < 20 {
		sepWidth = 20
	}
	s.WriteString(separatorLine.Render(strings.Repeat("─", sepWidth)))
	s.WriteString("\n")

	s.WriteString(m.renderHints())

	return s.String()
}

// ─── Hint bar ───────────────────────────────────────────────────────────────

func (m model) renderHints() string {
	if m.mode == modeStreaming {
		return hintBarStyle.Render("  Esc cancel")
	}

	if m.cmdMenuOpen {
		if matches := matchCommands(m.input.Value()); len(matches) > 0 {
			return m.renderCommandMenu(matches)
		}
	}

	if len(m.copied) > 0 {
		return copiedHint.Render("  ✓ Copied to clipboard")
	}
	return hintBarStyle.Render("  ? for help")
}

// ─── Stream handling ────────────────────────────────────────────────────────

// handleStreamEvent folds an event into the conversation and returns the
// output to print above the prompt, if any.
func (m *model) handleStreamEvent(ev api.StreamEvent) tea.Cmd {
	m.conv.Apply(ev)

	var cmds []tea.Cmd
	switch ev.Type {
	case api.EventText:
		m.preview += ev.Text
		m.status = "Writing..."

	case api.EventStepStart:
		m.status = "Thinking..."

	case api.EventToolCallStart:
		cmds = append(cmds, m.flushPreview()...)
		if inv, ok := m.conv.Tool(ev.ToolCallID); ok {
			if s := m.tools.Render(inv); s != "" {
				cmds = append(cmds, tea.Println(indentBlock(s)))
			}
		}
		m.status = "Preparing " + render.Sanitize(ev.ToolName) + "..."

	case api.EventToolCall:
		cmds = append(cmds, m.flushPreview()...)
		m.status = "Running " + render.Sanitize(ev.ToolName) + "..."

	case api.EventToolResult:
		cmds = append(cmds, m.flushPreview()...)
		if inv, ok := m.conv.Tool(ev.ToolCallID); ok && !m.printedTools[inv.ToolCallID] {
			m.printedTools[inv.ToolCallID] = true
			if s := m.tools.Render(inv); s != "" {
				cmds = append(cmds, tea.Println(indentBlock(s)))
			}
		}
		m.status = "Thinking..."

	case api.EventStepFinish, api.EventFinish:
		cmds = append(cmds, m.flushPreview()...)

	case api.EventError:
		cmds = append(cmds, m.flushPreview()...)
		cmds = append(cmds, tea.Println(errorMsgStyle.Render("  ✗ "+render.Sanitize(ev.Err))))
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Sequence(cmds...)
}

// flushPreview prints the pending text of the current step, rendered as a
// whole, and clears the preview.
func (m *model) flushPreview() []tea.Cmd {
	rendered := renderMarkdown(m.term, m.preview)
	m.preview = ""
	if rendered == "" {
		return nil
	}

	var cmds []tea.Cmd
	if !m.answerStarted {
		m.answerStarted = true
		cmds = append(cmds, tea.Println(assistantLabelStyle.Render("  ◆ Assistant")))
	}
	return append(cmds, tea.Println(rendered))
}

// cancelStream aborts the active request, printing whatever arrived.
func (m *model) cancelStream() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	cmds := m.flushPreview()
	cmds = append(cmds, tea.Println(warnMsgStyle.Render("  ! Request cancelled.")))
	m.finishStream()
	return tea.Sequence(cmds...)
}

func (m *model) finishStream() {
	m.mode = modeIdle
	m.streamCh = nil
	m.cancel = nil
	m.preview = ""
	m.status = ""
	m.answerStarted = false
	m.printedTools = make(map[string]bool)
}

// rememberConversation records the conversation id in the config so the
// next session can show it.
func (m *model) rememberConversation() {
	if m.cfg.LastConversation == m.conv.ID {
		return
	}
	m.cfg.LastConversation = m.conv.ID
	if err := m.cfg.Save(); err != nil {
		slog.Warn("saving last conversation", "error", err)
	}
}

func followUpLines() []tea.Cmd {
	cmds := []tea.Cmd{
		tea.Println(""),
		tea.Println(followUpStyle.Render("  💡 Follow-up suggestions:")),
	}
	for i, s := range service.FollowUpSuggestions {
		cmds = append(cmds, tea.Println(followUpStyle.Render(fmt.Sprintf("     %d. %s", i+1, s))))
	}
	return append(cmds,
		tea.Println(dimStyle.Render("     /followup <n> to send one")),
		tea.Println(""),
	)
}

func indentBlock(s string) string {
	return strings.TrimRight(indentText(s, "  "), "\n")
}
