// Package chat - message sending and stream consumption.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"finchat/internal/logging"
)

// Stream lifecycle messages
type streamChunkMsg string

type streamDoneMsg struct{}

type streamErrMsg struct{ err error }

// sendMessage starts a streamed chat turn for input.
func (m *Model) sendMessage(input string) (tea.Model, tea.Cmd) {
	m.history = append(m.history, Message{Role: "user", Content: input, Time: time.Now()})
	m.pendingUser = input
	m.partial.Reset()
	m.streaming = true
	m.refreshViewport()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.contentChan, m.errorChan = m.client.StreamChat(ctx, m.sessionID, input)

	logging.UIDebug("sendMessage: session=%s len=%d", m.sessionID, len(input))
	return m, tea.Batch(m.waitForStream(), m.spin.Tick)
}

// waitForStream blocks on the next stream event and converts it to a tea.Msg.
// Re-issued after every chunk so the update loop sees the whole stream.
func (m *Model) waitForStream() tea.Cmd {
	content, errs := m.contentChan, m.errorChan
	return func() tea.Msg {
		chunk, ok := <-content
		if ok {
			return streamChunkMsg(chunk)
		}
		if err, ok := <-errs; ok && err != nil {
			return streamErrMsg{err: err}
		}
		return streamDoneMsg{}
	}
}

// finishTurn commits the completed assistant response to the transcript and
// the local store.
func (m *Model) finishTurn() (tea.Model, tea.Cmd) {
	response := m.partial.String()
	m.streaming = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.history = append(m.history, Message{Role: "assistant", Content: response, Time: time.Now()})

	m.turnCount++
	if err := m.store.SaveTurn(m.sessionID, m.turnCount, m.pendingUser, response); err != nil {
		logging.Get(logging.CategoryUI).Warn("failed to cache turn: %v", err)
	}
	if err := m.store.TouchSession(m.sessionID, sessionTitle(m.pendingUser)); err != nil {
		logging.Get(logging.CategoryUI).Warn("failed to touch session: %v", err)
	}

	m.partial.Reset()
	m.pendingUser = ""
	m.refreshViewport()
	return m, nil
}

// failTurn surfaces a stream failure in the transcript. The partial text is
// kept visible so the user sees what arrived before the failure.
func (m *Model) failTurn(err error) (tea.Model, tea.Cmd) {
	m.streaming = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.err = err

	if m.partial.Len() > 0 {
		m.history = append(m.history, Message{Role: "assistant", Content: m.partial.String(), Time: time.Now()})
	}
	m.appendSystem(errorStyle.Render("assistant error: " + err.Error()))

	m.partial.Reset()
	m.pendingUser = ""
	return m, nil
}

// sessionTitle derives a short session title from the first user message.
func sessionTitle(input string) string {
	const max = 48
	runes := []rune(input)
	if len(runes) <= max {
		return input
	}
	return string(runes[:max-3]) + "..."
}
