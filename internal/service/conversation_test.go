package service

import (
	"testing"

	"chatterm/internal/api"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation(t *testing.T) {
	c := NewConversation("fixed")
	assert.Equal(t, "fixed", c.ID)

	fresh := NewConversation("")
	_, err := uuid.Parse(fresh.ID)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.NotEqual(t, fresh.ID, NewConversation("").ID)
}

func TestConversation_ApplyText(t *testing.T) {
	c := NewConversation("c")
	c.AddUser("hi")
	id := c.BeginAssistant()

	c.Apply(api.StreamEvent{Type: api.EventStepStart})
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "Hello "})
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "**there**"})
	c.Apply(api.StreamEvent{Type: api.EventFinish})

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, id, last.ID)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Equal(t, "Hello **there**", last.Text())
	require.Len(t, last.Parts, 2, "step-start plus one merged text part")
	assert.Equal(t, PartStepStart, last.Parts[0].Type)
}

func TestConversation_ApplyStartsAssistant(t *testing.T) {
	c := NewConversation("c")
	c.AddUser("q")
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "a"})

	require.Len(t, c.Messages, 2)
	assert.Equal(t, RoleAssistant, c.Messages[1].Role)
	_, err := uuid.Parse(c.Messages[1].ID)
	assert.NoError(t, err)
}

func TestConversation_ToolLifecycle(t *testing.T) {
	c := NewConversation("c")
	c.BeginAssistant()

	c.Apply(api.StreamEvent{Type: api.EventText, Text: "Let me check."})
	c.Apply(api.StreamEvent{Type: api.EventToolCallStart, ToolCallID: "t1", ToolName: "search_web"})

	inv, ok := c.Tool("t1")
	require.True(t, ok)
	assert.Equal(t, ToolStreaming, inv.State)

	c.Apply(api.StreamEvent{Type: api.EventToolCallDelta, ToolCallID: "t1", Text: `{"q":`})
	c.Apply(api.StreamEvent{Type: api.EventToolCallDelta, ToolCallID: "t1", Text: `"go"}`})
	c.Apply(api.StreamEvent{Type: api.EventToolCall, ToolCallID: "t1", ToolName: "search_web", Args: map[string]any{"q": "go"}})

	inv, _ = c.Tool("t1")
	assert.Equal(t, ToolCall, inv.State)
	assert.Equal(t, `{"q":"go"}`, inv.ArgsText)
	assert.Equal(t, map[string]any{"q": "go"}, inv.Args)

	c.Apply(api.StreamEvent{Type: api.EventStepFinish})
	c.Apply(api.StreamEvent{Type: api.EventToolResult, ToolCallID: "t1", Result: `{"results":[]}`})
	c.Apply(api.StreamEvent{Type: api.EventStepStart})
	c.Apply(api.StreamEvent{Type: api.EventToolCall, ToolCallID: "t2", ToolName: "get_stock_data"})
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "Done."})

	last, _ := c.Last()
	invs := last.ToolInvocations()
	require.Len(t, invs, 2)
	assert.Equal(t, ToolResult, invs[0].State)
	assert.Equal(t, `{"results":[]}`, invs[0].Result)
	assert.Equal(t, 0, invs[0].Step)
	assert.Equal(t, 1, invs[1].Step)

	// Text after a tool part starts a new text part.
	assert.Equal(t, "Let me check.Done.", last.Text())
	assert.Equal(t, PartText, last.Parts[len(last.Parts)-1].Type)
}

func TestConversation_ToolError(t *testing.T) {
	c := NewConversation("c")
	c.BeginAssistant()
	c.Apply(api.StreamEvent{Type: api.EventToolResult, ToolCallID: "x", Err: "boom"})

	inv, ok := c.Tool("x")
	require.True(t, ok)
	assert.Equal(t, ToolResult, inv.State)
	assert.Equal(t, "boom", inv.Error)
}

func TestConversation_StreamError(t *testing.T) {
	c := NewConversation("c")
	c.BeginAssistant()
	c.Apply(api.StreamEvent{Type: api.EventError, Err: "overloaded"})

	last, _ := c.Last()
	assert.Equal(t, "overloaded", last.Error)
}

func TestConversation_History(t *testing.T) {
	c := NewConversation("conv-1")
	user := c.AddUser("What is Go?")
	c.BeginAssistant()
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "A language."})
	c.BeginAssistant() // empty turn, dropped
	c.AddUser("More")

	hist := c.History()
	require.Len(t, hist, 3)
	assert.Equal(t, api.Message{ID: user.ID, Role: "user", Content: "What is Go?"}, hist[0])
	assert.Equal(t, "assistant", hist[1].Role)
	assert.Equal(t, "More", hist[2].Content)

	req := c.Request()
	assert.Equal(t, "conv-1", req.ID)
	assert.Equal(t, hist, req.Messages)
}

func TestConversation_LastAssistant(t *testing.T) {
	c := NewConversation("c")
	_, ok := c.LastAssistant()
	assert.False(t, ok)

	c.BeginAssistant()
	c.Apply(api.StreamEvent{Type: api.EventText, Text: "answer"})
	c.AddUser("follow-up")

	msg, ok := c.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "answer", msg.Text())
}

func TestFollowUpSuggestions(t *testing.T) {
	assert.Len(t, FollowUpSuggestions, 3)
	assert.Equal(t, "3a99f679-12f5-4776-b231-034aecc5f78c", DefaultConversationID)
}
