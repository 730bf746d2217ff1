package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chatterm/internal/config"
)

const clientIdentifier = "chatterm"

type Client struct {
	endpoint   string
	httpClient *http.Client
	apiKey     string
	model      string
	system     string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		system: cfg.System,
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream, text/plain")
	req.Header.Set("X-Client", clientIdentifier)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// --- Chat (Streaming) ---

// Message is one turn of the conversation history sent to the backend.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	ID       string    `json:"id,omitempty"`
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
	System   string    `json:"system,omitempty"`
}

// StreamCallback is called for each decoded stream event.
type StreamCallback func(ev StreamEvent)

// StreamChat posts req and decodes the streamed response, invoking cb for
// every event until the stream finishes, the body ends, or ctx is done.
// Model and system prompt from the client config fill in empty fields.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, cb StreamCallback) error {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.System == "" {
		req.System = c.system
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(httpReq)

	slog.Debug("chat request", "endpoint", c.endpoint, "conversation", req.ID, "messages", len(req.Messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	return readStream(ctx, resp.Body, cb)
}

// readStream decodes a response body line by line. Both the data-stream
// format ("0:\"text\"") and SSE UI-message chunks ("data: {...}") are
// accepted; the format is detected per line.
func readStream(ctx context.Context, r io.Reader, cb StreamCallback) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer for large tool results
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, ok, err := ParseLine(line)
		if err != nil {
			slog.Debug("skipping stream line", "line", truncate(line, 200), "error", err)
			continue
		}
		if !ok {
			continue
		}

		cb(ev)
		if ev.Type == EventFinish {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("reading stream: line exceeds 1 MiB: %w", err)
		}
		return fmt.Errorf("reading stream: %w", err)
	}
	return ctx.Err()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
