package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type EventType string

const (
	EventText          EventType = "text"
	EventError         EventType = "error"
	EventToolCallStart EventType = "tool-call-start"
	EventToolCallDelta EventType = "tool-call-delta"
	EventToolCall      EventType = "tool-call"
	EventToolResult    EventType = "tool-result"
	EventStepStart     EventType = "step-start"
	EventStepFinish    EventType = "step-finish"
	EventFinish        EventType = "finish"
)

// StreamEvent is one decoded part of a chat response stream. Which
// fields are set depends on Type:
//
//	EventText          Text
//	EventError         Err
//	EventToolCallStart ToolCallID, ToolName
//	EventToolCallDelta ToolCallID, Text (partial JSON arguments)
//	EventToolCall      ToolCallID, ToolName, Args
//	EventToolResult    ToolCallID, Result, or Err when the tool failed
//	EventStepStart     MessageID
//	EventStepFinish    FinishReason, Usage
//	EventFinish        FinishReason, Usage
type StreamEvent struct {
	Type         EventType
	Text         string
	ToolCallID   string
	ToolName     string
	Args         map[string]any
	Result       string
	MessageID    string
	FinishReason string
	Usage        *Usage
	Err          string
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// Data-stream part payloads, keyed by the single-character line prefix.
type toolCallPart struct {
	ToolCallID    string          `json:"toolCallId"`
	ToolName      string          `json:"toolName"`
	Args          json.RawMessage `json:"args"`
	ArgsTextDelta string          `json:"argsTextDelta"`
	Result        json.RawMessage `json:"result"`
}

type finishPart struct {
	FinishReason string `json:"finishReason"`
	Usage        *Usage `json:"usage"`
	MessageID    string `json:"messageId"`
}

// uiChunk is an SSE UI-message stream chunk. Older servers send textDelta
// instead of delta.
type uiChunk struct {
	Type           string          `json:"type"`
	Delta          string          `json:"delta"`
	TextDelta      string          `json:"textDelta"`
	ToolCallID     string          `json:"toolCallId"`
	ToolName       string          `json:"toolName"`
	InputTextDelta string          `json:"inputTextDelta"`
	Input          json.RawMessage `json:"input"`
	Output         json.RawMessage `json:"output"`
	ErrorText      string          `json:"errorText"`
	FinishReason   string          `json:"finishReason"`
	MessageID      string          `json:"messageId"`
}

var errMalformed = errors.New("malformed stream line")

// ParseLine decodes a single non-empty stream line. ok is false for lines
// that carry nothing to display (SSE comments and ids, reasoning, data
// annotations). An error means the line could not be understood.
func ParseLine(line string) (ev StreamEvent, ok bool, err error) {
	if field, value, found := strings.Cut(line, ":"); found && isSSEField(field) {
		if field != "data" {
			return StreamEvent{}, false, nil
		}
		return parseUIChunk(strings.TrimSpace(value))
	}
	if strings.HasPrefix(line, ":") {
		// SSE comment / keep-alive
		return StreamEvent{}, false, nil
	}

	code, payload, found := strings.Cut(line, ":")
	if !found || len(code) != 1 {
		return StreamEvent{}, false, errMalformed
	}
	return parseDataPart(code[0], []byte(payload))
}

func isSSEField(name string) bool {
	switch name {
	case "data", "event", "id", "retry":
		return true
	}
	return false
}

func parseDataPart(code byte, payload []byte) (StreamEvent, bool, error) {
	switch code {
	case '0', '3':
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return StreamEvent{}, false, fmt.Errorf("part %c: %w", code, err)
		}
		if code == '0' {
			return StreamEvent{Type: EventText, Text: s}, true, nil
		}
		return StreamEvent{Type: EventError, Err: s}, true, nil

	case '9', 'a', 'b', 'c':
		var p toolCallPart
		if err := json.Unmarshal(payload, &p); err != nil {
			return StreamEvent{}, false, fmt.Errorf("part %c: %w", code, err)
		}
		ev := StreamEvent{ToolCallID: p.ToolCallID, ToolName: p.ToolName}
		switch code {
		case '9':
			args, err := decodeArgs(p.Args)
			if err != nil {
				return StreamEvent{}, false, fmt.Errorf("part 9 args: %w", err)
			}
			ev.Type, ev.Args = EventToolCall, args
		case 'a':
			ev.Type, ev.Result = EventToolResult, resultText(p.Result)
		case 'b':
			ev.Type = EventToolCallStart
		case 'c':
			ev.Type, ev.Text = EventToolCallDelta, p.ArgsTextDelta
		}
		return ev, true, nil

	case 'd', 'e', 'f':
		var p finishPart
		if err := json.Unmarshal(payload, &p); err != nil {
			return StreamEvent{}, false, fmt.Errorf("part %c: %w", code, err)
		}
		switch code {
		case 'd':
			return StreamEvent{Type: EventFinish, FinishReason: p.FinishReason, Usage: p.Usage}, true, nil
		case 'e':
			return StreamEvent{Type: EventStepFinish, FinishReason: p.FinishReason, Usage: p.Usage}, true, nil
		default:
			return StreamEvent{Type: EventStepStart, MessageID: p.MessageID}, true, nil
		}

	case '2', '8', 'g', 'h', 'i', 'j', 'k':
		// data, annotations, reasoning, sources, files
		return StreamEvent{}, false, nil
	}
	return StreamEvent{}, false, fmt.Errorf("unknown stream part %q", code)
}

func parseUIChunk(payload string) (StreamEvent, bool, error) {
	if payload == "[DONE]" {
		return StreamEvent{Type: EventFinish}, true, nil
	}

	var c uiChunk
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return StreamEvent{}, false, fmt.Errorf("sse chunk: %w", err)
	}

	switch c.Type {
	case "text-delta":
		text := c.Delta
		if text == "" {
			text = c.TextDelta
		}
		return StreamEvent{Type: EventText, Text: text}, true, nil
	case "tool-input-start":
		return StreamEvent{Type: EventToolCallStart, ToolCallID: c.ToolCallID, ToolName: c.ToolName}, true, nil
	case "tool-input-delta":
		return StreamEvent{Type: EventToolCallDelta, ToolCallID: c.ToolCallID, Text: c.InputTextDelta}, true, nil
	case "tool-input-available":
		args, err := decodeArgs(c.Input)
		if err != nil {
			return StreamEvent{}, false, fmt.Errorf("sse tool input: %w", err)
		}
		return StreamEvent{Type: EventToolCall, ToolCallID: c.ToolCallID, ToolName: c.ToolName, Args: args}, true, nil
	case "tool-output-available":
		return StreamEvent{Type: EventToolResult, ToolCallID: c.ToolCallID, Result: resultText(c.Output)}, true, nil
	case "tool-output-error":
		return StreamEvent{Type: EventToolResult, ToolCallID: c.ToolCallID, Err: c.ErrorText}, true, nil
	case "start-step":
		return StreamEvent{Type: EventStepStart, MessageID: c.MessageID}, true, nil
	case "finish-step":
		return StreamEvent{Type: EventStepFinish, FinishReason: c.FinishReason}, true, nil
	case "finish":
		return StreamEvent{Type: EventFinish, FinishReason: c.FinishReason}, true, nil
	case "error":
		return StreamEvent{Type: EventError, Err: c.ErrorText}, true, nil
	case "":
		return StreamEvent{}, false, errMalformed
	}
	// start, text-start, text-end, reasoning-*, source-*, data-*
	return StreamEvent{}, false, nil
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// resultText flattens a tool result to text. JSON strings are unquoted
// since tools commonly return pre-serialized JSON; anything else is kept
// as raw JSON.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
