package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"chatterm/internal/config"
)

func TestNewClient(t *testing.T) {
	cfg := &config.Config{
		Endpoint: "http://localhost:3000/api/chat/",
		APIKey:   "my-key",
		Model:    "gpt-4o",
		System:   "be brief",
	}
	c := NewClient(cfg)
	if c.endpoint != "http://localhost:3000/api/chat" {
		t.Errorf("endpoint = %q, want trailing slash trimmed", c.endpoint)
	}
	if c.apiKey != "my-key" {
		t.Errorf("apiKey = %q, want %q", c.apiKey, "my-key")
	}
	if c.model != "gpt-4o" || c.system != "be brief" {
		t.Errorf("model/system = %q/%q", c.model, c.system)
	}
}

func TestSetHeaders(t *testing.T) {
	t.Run("with api key", func(t *testing.T) {
		c := &Client{apiKey: "sk-123"}
		req, _ := http.NewRequest("POST", "http://example.com", nil)
		c.setHeaders(req)

		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if got := req.Header.Get("Authorization"); got != "Bearer sk-123" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer sk-123")
		}
	})

	t.Run("without api key", func(t *testing.T) {
		c := &Client{}
		req, _ := http.NewRequest("POST", "http://example.com", nil)
		c.setHeaders(req)

		if got := req.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
	})
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    StreamEvent
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "data-stream text",
			line:   `0:"Hello \"world\""`,
			want:   StreamEvent{Type: EventText, Text: `Hello "world"`},
			wantOK: true,
		},
		{
			name:   "data-stream error",
			line:   `3:"rate limited"`,
			want:   StreamEvent{Type: EventError, Err: "rate limited"},
			wantOK: true,
		},
		{
			name:   "tool call",
			line:   `9:{"toolCallId":"call_1","toolName":"search_web","args":{"query":"go"}}`,
			want:   StreamEvent{Type: EventToolCall, ToolCallID: "call_1", ToolName: "search_web", Args: map[string]any{"query": "go"}},
			wantOK: true,
		},
		{
			name:   "tool result object kept as JSON",
			line:   `a:{"toolCallId":"call_1","result":{"results":[]}}`,
			want:   StreamEvent{Type: EventToolResult, ToolCallID: "call_1", Result: `{"results":[]}`},
			wantOK: true,
		},
		{
			name:   "tool result string unquoted",
			line:   `a:{"toolCallId":"call_1","result":"{\"symbol\":\"AAPL\"}"}`,
			want:   StreamEvent{Type: EventToolResult, ToolCallID: "call_1", Result: `{"symbol":"AAPL"}`},
			wantOK: true,
		},
		{
			name:   "tool call start",
			line:   `b:{"toolCallId":"call_2","toolName":"get_stock_data"}`,
			want:   StreamEvent{Type: EventToolCallStart, ToolCallID: "call_2", ToolName: "get_stock_data"},
			wantOK: true,
		},
		{
			name:   "tool call delta",
			line:   `c:{"toolCallId":"call_2","argsTextDelta":"{\"sym"}`,
			want:   StreamEvent{Type: EventToolCallDelta, ToolCallID: "call_2", Text: `{"sym`},
			wantOK: true,
		},
		{
			name:   "finish step",
			line:   `e:{"finishReason":"tool-calls","usage":{"promptTokens":10,"completionTokens":5},"isContinued":false}`,
			want:   StreamEvent{Type: EventStepFinish, FinishReason: "tool-calls", Usage: &Usage{PromptTokens: 10, CompletionTokens: 5}},
			wantOK: true,
		},
		{
			name:   "finish message",
			line:   `d:{"finishReason":"stop"}`,
			want:   StreamEvent{Type: EventFinish, FinishReason: "stop"},
			wantOK: true,
		},
		{
			name:   "start step",
			line:   `f:{"messageId":"msg-1"}`,
			want:   StreamEvent{Type: EventStepStart, MessageID: "msg-1"},
			wantOK: true,
		},
		{name: "reasoning ignored", line: `g:"thinking"`},
		{name: "sse comment", line: `: keep-alive`},
		{name: "sse event name", line: `event: message`},
		{
			name:   "sse text delta",
			line:   `data: {"type":"text-delta","id":"t1","delta":"Hi"}`,
			want:   StreamEvent{Type: EventText, Text: "Hi"},
			wantOK: true,
		},
		{
			name:   "sse legacy textDelta",
			line:   `data: {"type":"text-delta","textDelta":"Yo"}`,
			want:   StreamEvent{Type: EventText, Text: "Yo"},
			wantOK: true,
		},
		{
			name:   "sse tool input",
			line:   `data: {"type":"tool-input-available","toolCallId":"c1","toolName":"getWeather","input":{"city":"Oslo"}}`,
			want:   StreamEvent{Type: EventToolCall, ToolCallID: "c1", ToolName: "getWeather", Args: map[string]any{"city": "Oslo"}},
			wantOK: true,
		},
		{
			name:   "sse tool output",
			line:   `data: {"type":"tool-output-available","toolCallId":"c1","output":{"temp":3}}`,
			want:   StreamEvent{Type: EventToolResult, ToolCallID: "c1", Result: `{"temp":3}`},
			wantOK: true,
		},
		{
			name:   "sse tool error",
			line:   `data: {"type":"tool-output-error","toolCallId":"c1","errorText":"boom"}`,
			want:   StreamEvent{Type: EventToolResult, ToolCallID: "c1", Err: "boom"},
			wantOK: true,
		},
		{
			name:   "sse done",
			line:   `data: [DONE]`,
			want:   StreamEvent{Type: EventFinish},
			wantOK: true,
		},
		{name: "sse text-start ignored", line: `data: {"type":"text-start","id":"t1"}`},
		{name: "unknown part", line: `z:{}`, wantErr: true},
		{name: "no prefix", line: `hello`, wantErr: true},
		{name: "bad json", line: `0:not-json`, wantErr: true},
		{name: "sse bad json", line: `data: {oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ParseLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStreamChat(t *testing.T) {
	t.Run("data stream", func(t *testing.T) {
		payload := strings.Join([]string{
			`f:{"messageId":"m1"}`,
			`0:"Here is "`,
			`0:"**bold**"`,
			`g:"hidden reasoning"`,
			`e:{"finishReason":"stop","isContinued":false}`,
			`d:{"finishReason":"stop"}`,
			`0:"after finish"`,
		}, "\n")

		var gotReq ChatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer k" {
				t.Errorf("Authorization = %q", got)
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &gotReq); err != nil {
				t.Errorf("unmarshal request: %v", err)
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = fmt.Fprint(w, payload)
		}))
		defer srv.Close()

		c := &Client{endpoint: srv.URL, httpClient: srv.Client(), apiKey: "k", model: "m", system: "s"}

		var events []StreamEvent
		err := c.StreamChat(context.Background(), ChatRequest{
			ID:       "conv",
			Messages: []Message{{Role: "user", Content: "hi"}},
		}, func(ev StreamEvent) {
			events = append(events, ev)
		})
		if err != nil {
			t.Fatalf("StreamChat() error = %v", err)
		}

		if gotReq.ID != "conv" || gotReq.Model != "m" || gotReq.System != "s" {
			t.Errorf("request = %+v, want id/model/system filled", gotReq)
		}
		if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hi" {
			t.Errorf("request messages = %+v", gotReq.Messages)
		}

		var types []EventType
		var text strings.Builder
		for _, ev := range events {
			types = append(types, ev.Type)
			text.WriteString(ev.Text)
		}
		wantTypes := []EventType{EventStepStart, EventText, EventText, EventStepFinish, EventFinish}
		if !reflect.DeepEqual(types, wantTypes) {
			t.Errorf("event types = %v, want %v", types, wantTypes)
		}
		if text.String() != "Here is **bold**" {
			t.Errorf("text = %q", text.String())
		}
	})

	t.Run("sse stream with junk lines", func(t *testing.T) {
		payload := "data: {\"type\":\"start\"}\n\n" +
			"data: {\"type\":\"text-delta\",\"delta\":\"A\"}\n\n" +
			"garbage\n" +
			"data: {\"type\":\"text-delta\",\"delta\":\"B\"}\n\n" +
			"data: [DONE]\n\n"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, payload)
		}))
		defer srv.Close()

		c := &Client{endpoint: srv.URL, httpClient: srv.Client()}
		var text string
		var finished bool
		err := c.StreamChat(context.Background(), ChatRequest{}, func(ev StreamEvent) {
			text += ev.Text
			finished = finished || ev.Type == EventFinish
		})
		if err != nil {
			t.Fatalf("StreamChat() error = %v", err)
		}
		if text != "AB" || !finished {
			t.Errorf("text = %q finished = %v", text, finished)
		}
	})

	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(w, "bad key\n")
		}))
		defer srv.Close()

		c := &Client{endpoint: srv.URL, httpClient: srv.Client()}
		err := c.StreamChat(context.Background(), ChatRequest{}, func(StreamEvent) {
			t.Error("callback invoked on error response")
		})

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.StatusCode != 401 || se.Body != "bad key" {
			t.Errorf("StatusError = %+v", se)
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("error = %q, expected to contain status code", err.Error())
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprintln(w, `0:"first"`)
			w.(http.Flusher).Flush()
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		c := &Client{endpoint: srv.URL, httpClient: srv.Client()}

		done := make(chan error, 1)
		go func() {
			done <- c.StreamChat(ctx, ChatRequest{}, func(ev StreamEvent) {
				if ev.Text == "first" {
					cancel()
				}
			})
		}()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("error = %v, want context.Canceled", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("StreamChat did not return after cancel")
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		c := &Client{endpoint: "http://127.0.0.1:1", httpClient: &http.Client{Timeout: time.Second}}
		err := c.StreamChat(context.Background(), ChatRequest{}, func(StreamEvent) {})
		if err == nil || !strings.Contains(err.Error(), "sending request") {
			t.Errorf("error = %v, want sending request failure", err)
		}
	})
}
