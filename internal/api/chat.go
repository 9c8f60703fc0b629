package api

import (
	"context"

	"finchat/internal/logging"
)

// Chat sends one chat turn and reads the streamed response through h.
// Failures before the stream opens (marshal, transport, non-200 status) are
// returned directly; once the body is open every outcome is delivered
// through the handler's sinks.
func (c *Client) Chat(ctx context.Context, sessionID, message string, h StreamHandler) error {
	logging.API("Chat: session=%s message_len=%d", sessionID, len(message))

	resp, err := c.stream(ctx, "/chat/stream", chatRequest{
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ReadStream(resp.Body, sessionID, h)
	return nil
}

// StreamChat is the channel form of Chat used by the chat widget: chunks
// arrive on the content channel, a single terminal error (if any) on the
// error channel, and both channels close when the stream finishes.
func (c *Client) StreamChat(ctx context.Context, sessionID, message string) (<-chan string, <-chan error) {
	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		err := c.Chat(ctx, sessionID, message, StreamHandler{
			OnChunk: func(chunk string) {
				select {
				case contentChan <- chunk:
				case <-ctx.Done():
				}
			},
			OnError: func(err error) {
				errorChan <- err
			},
		})
		if err != nil {
			errorChan <- err
		}
	}()

	return contentChan, errorChan
}

// History fetches the server-side turn history for a session.
func (c *Client) History(ctx context.Context, sessionID string) ([]ChatTurn, error) {
	var turns []ChatTurn
	if err := c.do(ctx, "GET", "/sessions/"+sessionID+"/history", nil, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
