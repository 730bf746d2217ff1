package api

import "context"

// ChatAPI defines the interface for the chat backend client.
// *Client satisfies this interface. TUI and tests can use mock implementations.
type ChatAPI interface {
	StreamChat(ctx context.Context, req ChatRequest, cb StreamCallback) error
}

var _ ChatAPI = (*Client)(nil)
