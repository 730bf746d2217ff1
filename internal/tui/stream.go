package tui

import (
	"context"
	"errors"

	"chatterm/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Messages sent from stream goroutine to Bubble Tea ──────────────────────
//
// Every message carries the id of the stream that produced it, so events
// still buffered from a cancelled request are dropped.

type streamEventMsg struct {
	id int
	ev api.StreamEvent
}

type streamDoneMsg struct {
	id int
}

type streamErrMsg struct {
	id  int
	err error
}

// ─── Stream command ─────────────────────────────────────────────────────────
//
// Launches the request in a goroutine, streams events through a channel,
// and returns a tea.Cmd that reads one message from it. The model's Update
// dispatches another waitForStream after each event.

func beginStream(ctx context.Context, client api.ChatAPI, id int, req api.ChatRequest) (<-chan tea.Msg, tea.Cmd) {
	ch := make(chan tea.Msg, 64)

	send := func(msg tea.Msg) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)

		err := client.StreamChat(ctx, req, func(ev api.StreamEvent) {
			send(streamEventMsg{id: id, ev: ev})
		})

		switch {
		case err == nil:
			send(streamDoneMsg{id: id})
		case errors.Is(err, context.Canceled):
			// Cancelled by the user; the model already reset.
		default:
			send(streamErrMsg{id: id, err: err})
		}
	}()

	return ch, waitForStream(ch, id)
}

// waitForStream reads the next message from the channel. A closed channel
// reads as the end of the stream.
func waitForStream(ch <-chan tea.Msg, id int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return streamDoneMsg{id: id}
		}
		return msg
	}
}
