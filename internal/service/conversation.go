package service

import (
	"strings"
	"time"

	"chatterm/internal/api"
	"chatterm/internal/config"

	"github.com/google/uuid"
)

// DefaultConversationID is used when the config names no conversation.
const DefaultConversationID = config.DefaultConversationID

// FollowUpSuggestions are offered after every assistant reply.
var FollowUpSuggestions = []string{
	"Tell me more about this",
	"Can you explain it differently?",
	"Give me an example",
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type PartType string

const (
	PartText           PartType = "text"
	PartToolInvocation PartType = "tool-invocation"
	PartStepStart      PartType = "step-start"
)

type ToolState string

const (
	// ToolStreaming: arguments are still arriving.
	ToolStreaming ToolState = "streaming"
	ToolCall      ToolState = "call"
	ToolResult    ToolState = "result"
)

type ToolInvocation struct {
	ToolName   string         `json:"toolName"`
	ToolCallID string         `json:"toolCallId"`
	Args       map[string]any `json:"args,omitempty"`
	ArgsText   string         `json:"-"`
	Result     string         `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	State      ToolState      `json:"state"`
	Step       int            `json:"step"`
}

type Part struct {
	Type           PartType        `json:"type"`
	Text           string          `json:"text,omitempty"`
	ToolInvocation *ToolInvocation `json:"toolInvocation,omitempty"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Parts     []Part    `json:"parts"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Text concatenates the message's text parts.
func (m ChatMessage) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// ToolInvocations returns the message's tool parts in stream order.
func (m ChatMessage) ToolInvocations() []ToolInvocation {
	var out []ToolInvocation
	for _, p := range m.Parts {
		if p.Type == PartToolInvocation && p.ToolInvocation != nil {
			out = append(out, *p.ToolInvocation)
		}
	}
	return out
}

// Conversation is the in-memory message list for one chat session.
type Conversation struct {
	ID       string
	Messages []ChatMessage

	step int
}

// NewConversation starts an empty conversation. An empty id gets a fresh
// random one.
func NewConversation(id string) *Conversation {
	if id == "" {
		id = uuid.NewString()
	}
	return &Conversation{ID: id}
}

// AddUser appends a user message and returns it.
func (c *Conversation) AddUser(text string) ChatMessage {
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Parts:     []Part{{Type: PartText, Text: text}},
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// BeginAssistant appends an empty assistant message that subsequent
// Apply calls fill in, and returns its id.
func (c *Conversation) BeginAssistant() string {
	c.step = 0
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	return msg.ID
}

// Apply folds a stream event into the trailing assistant message,
// starting one if the conversation does not end with one.
func (c *Conversation) Apply(ev api.StreamEvent) {
	if len(c.Messages) == 0 || c.Messages[len(c.Messages)-1].Role != RoleAssistant {
		c.BeginAssistant()
	}
	msg := &c.Messages[len(c.Messages)-1]

	switch ev.Type {
	case api.EventText:
		if n := len(msg.Parts); n > 0 && msg.Parts[n-1].Type == PartText {
			msg.Parts[n-1].Text += ev.Text
		} else {
			msg.Parts = append(msg.Parts, Part{Type: PartText, Text: ev.Text})
		}

	case api.EventStepStart:
		msg.Parts = append(msg.Parts, Part{Type: PartStepStart})

	case api.EventStepFinish:
		c.step++

	case api.EventToolCallStart:
		inv := c.tool(msg, ev.ToolCallID)
		inv.ToolName = ev.ToolName
		inv.State = ToolStreaming

	case api.EventToolCallDelta:
		inv := c.tool(msg, ev.ToolCallID)
		inv.ArgsText += ev.Text
		if inv.State == "" {
			inv.State = ToolStreaming
		}

	case api.EventToolCall:
		inv := c.tool(msg, ev.ToolCallID)
		if ev.ToolName != "" {
			inv.ToolName = ev.ToolName
		}
		inv.Args = ev.Args
		inv.State = ToolCall

	case api.EventToolResult:
		inv := c.tool(msg, ev.ToolCallID)
		inv.Result = ev.Result
		inv.Error = ev.Err
		inv.State = ToolResult

	case api.EventError:
		msg.Error = ev.Err
	}
}

// tool finds the invocation with the given call id in msg, appending a
// new one when absent.
func (c *Conversation) tool(msg *ChatMessage, id string) *ToolInvocation {
	for i := range msg.Parts {
		if inv := msg.Parts[i].ToolInvocation; inv != nil && inv.ToolCallID == id {
			return inv
		}
	}
	inv := &ToolInvocation{ToolCallID: id, Step: c.step}
	msg.Parts = append(msg.Parts, Part{Type: PartToolInvocation, ToolInvocation: inv})
	return inv
}

// Last returns the final message, if any.
func (c *Conversation) Last() (ChatMessage, bool) {
	if len(c.Messages) == 0 {
		return ChatMessage{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastAssistant returns the most recent assistant message, if any.
func (c *Conversation) LastAssistant() (ChatMessage, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return ChatMessage{}, false
}

// Tool looks up a tool invocation in the trailing message by call id.
func (c *Conversation) Tool(id string) (ToolInvocation, bool) {
	last, ok := c.Last()
	if !ok {
		return ToolInvocation{}, false
	}
	for _, inv := range last.ToolInvocations() {
		if inv.ToolCallID == id {
			return inv, true
		}
	}
	return ToolInvocation{}, false
}

// History returns the messages to send with the next request. Messages
// without text (e.g. tool-only assistant turns) are omitted.
func (c *Conversation) History() []api.Message {
	var out []api.Message
	for _, m := range c.Messages {
		text := m.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, api.Message{ID: m.ID, Role: string(m.Role), Content: text})
	}
	return out
}

// Request builds the chat request for the current history.
func (c *Conversation) Request() api.ChatRequest {
	return api.ChatRequest{ID: c.ID, Messages: c.History()}
}
