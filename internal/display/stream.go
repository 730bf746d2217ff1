package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chatterm/internal/api"
	"chatterm/internal/render"
	"chatterm/internal/service"
	"chatterm/internal/tools"
)

// Spinner frames for activity indication
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StreamDisplay prints a streamed reply for one-shot mode. Text is held
// back until a step finishes and then rendered as a whole, so markdown
// constructs that span chunks come out right. A spinner line shows
// activity in the meantime.
type StreamDisplay struct {
	out   io.Writer
	conv  *service.Conversation
	term  *render.Terminal
	tools *tools.Renderer

	pending    string
	spinnerIdx int
	activityUp bool
	printed    map[string]bool // tool call id -> result printed

	// FinalAnswer accumulates all text of the reply.
	FinalAnswer string
	// Err holds the last stream error reported by the backend.
	Err string
}

func NewStreamDisplay(conv *service.Conversation, width int, codeTheme string) *StreamDisplay {
	return &StreamDisplay{
		out:     os.Stdout,
		conv:    conv,
		term:    render.NewTerminal(width, codeTheme),
		tools:   tools.NewRenderer(width),
		printed: make(map[string]bool),
	}
}

// SetOutput redirects display output, for tests.
func (d *StreamDisplay) SetOutput(w io.Writer) {
	d.out = w
}

// HandleEvent is the api.StreamCallback for StreamChat.
func (d *StreamDisplay) HandleEvent(ev api.StreamEvent) {
	d.conv.Apply(ev)

	switch ev.Type {
	case api.EventText:
		d.pending += ev.Text
		d.FinalAnswer += ev.Text
		d.showActivity("Writing...")

	case api.EventStepStart:
		d.showActivity("Thinking...")

	case api.EventToolCallStart:
		d.flushText()
		if inv, ok := d.conv.Tool(ev.ToolCallID); ok {
			if s := d.tools.Render(inv); s != "" {
				d.println(s)
			}
		}

	case api.EventToolCallDelta:
		d.showActivity("Preparing tool call...")

	case api.EventToolCall:
		d.flushText()
		d.showActivity("Running " + render.Sanitize(ev.ToolName) + "...")

	case api.EventToolResult:
		d.flushText()
		if inv, ok := d.conv.Tool(ev.ToolCallID); ok && !d.printed[inv.ToolCallID] {
			d.printed[inv.ToolCallID] = true
			if s := d.tools.Render(inv); s != "" {
				d.println(s)
			}
		}

	case api.EventStepFinish:
		d.flushText()

	case api.EventError:
		d.flushText()
		d.Err = ev.Err
		d.println(fmt.Sprintf("%s✗%s %s", Red, Reset, render.Sanitize(ev.Err)))

	case api.EventFinish:
		d.Flush()
	}
}

// Flush prints any held text and clears the activity line.
func (d *StreamDisplay) Flush() {
	d.flushText()
	d.clearActivity()
}

// PrintFollowUps lists the follow-up suggestions after a reply.
func (d *StreamDisplay) PrintFollowUps() {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "  💡 Follow-up suggestions:")
	for i, s := range service.FollowUpSuggestions {
		fmt.Fprintf(d.out, "     %d. %s\n", i+1, s)
	}
}

func (d *StreamDisplay) flushText() {
	text := service.TrimTrailingBlankLines(d.pending)
	d.pending = ""
	if strings.TrimSpace(text) == "" {
		return
	}
	d.println(d.term.RenderString(text))
}

func (d *StreamDisplay) println(s string) {
	d.clearActivity()
	fmt.Fprintln(d.out, s)
}

func (d *StreamDisplay) showActivity(text string) {
	frame := spinnerFrames[d.spinnerIdx%len(spinnerFrames)]
	d.spinnerIdx++
	fmt.Fprintf(d.out, "\r  %s%s%s %s\033[K", Yellow, frame, Reset, text)
	d.activityUp = true
}

func (d *StreamDisplay) clearActivity() {
	if d.activityUp {
		fmt.Fprint(d.out, "\r\033[K")
		d.activityUp = false
	}
}
