package api

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"finchat/internal/logging"
)

// errorMarkerType is the type value of an in-band error envelope.
const errorMarkerType = "error"

// genericStreamFailure is reported when an error envelope is detected but
// its message cannot be recovered.
const genericStreamFailure = "assistant stream reported an error"

// StreamHandler bundles the three sinks a streamed chat response is
// delivered through. Exactly one of OnComplete or OnError fires, once, after
// zero or more OnChunk calls.
type StreamHandler struct {
	// OnChunk receives each decoded text fragment in arrival order.
	OnChunk func(chunk string)

	// OnComplete receives the exact concatenation of all chunks plus the
	// session identifier the request was made under.
	OnComplete func(full string, sessionID string)

	// OnError receives the single normalized error: network failure,
	// decode failure, or an in-band error envelope.
	OnError func(err error)
}

// ReadStream pulls chunks from r until end-of-stream, decoding bytes to text
// and inspecting each chunk for an in-band error envelope
// ({"type":"error","message":...} inside an otherwise-success stream).
//
// On envelope detection processing stops and OnError receives a StreamError
// carrying the envelope message. On normal end-of-stream OnComplete receives
// the full concatenated text and sessionID. Any read failure is routed to
// OnError rather than returned. The reader itself never retries, times out,
// or cancels; terminal states are final.
//
// Multi-byte runes split across read boundaries are carried over so each
// OnChunk receives whole runes, while the final concatenation stays
// byte-exact.
func ReadStream(r io.Reader, sessionID string, h StreamHandler) {
	logging.StreamDebug("ReadStream: start session=%s", sessionID)

	var total strings.Builder
	var carry []byte
	buf := make([]byte, 4096)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			carry = append(carry, buf[:n]...)
			complete, rest := splitTrailingPartialRune(carry)
			if len(complete) > 0 {
				chunk := string(complete)
				if msg, found := detectErrorEnvelope(chunk); found {
					logging.StreamError("ReadStream: in-band error session=%s: %s", sessionID, msg)
					if h.OnError != nil {
						h.OnError(&StreamError{Message: msg})
					}
					return
				}
				total.WriteString(chunk)
				if h.OnChunk != nil {
					h.OnChunk(chunk)
				}
			}
			carry = append([]byte(nil), rest...)
		}

		if err == io.EOF {
			// Flush any held-back bytes so the concatenation stays exact
			// even when the stream ends mid-rune.
			if len(carry) > 0 {
				chunk := string(carry)
				total.WriteString(chunk)
				if h.OnChunk != nil {
					h.OnChunk(chunk)
				}
			}
			logging.StreamDebug("ReadStream: complete session=%s len=%d", sessionID, total.Len())
			if h.OnComplete != nil {
				h.OnComplete(total.String(), sessionID)
			}
			return
		}
		if err != nil {
			logging.StreamError("ReadStream: read failed session=%s: %v", sessionID, err)
			if h.OnError != nil {
				h.OnError(fmt.Errorf("stream read failed: %w", err))
			}
			return
		}
	}
}

// splitTrailingPartialRune splits p so that complete ends on a rune boundary.
// rest holds the leading bytes of a rune whose remainder has not arrived yet
// (at most utf8.UTFMax-1 bytes).
func splitTrailingPartialRune(p []byte) (complete, rest []byte) {
	for i := len(p) - 1; i >= 0 && len(p)-i < utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if !utf8.FullRune(p[i:]) {
				return p[:i], p[i:]
			}
			break
		}
	}
	return p, nil
}

// detectErrorEnvelope reports whether chunk carries an in-band error
// envelope, returning the failure message to surface. Detection parses the
// JSON envelope rather than substring-matching message text, so legitimate
// content containing the word "error" is not misclassified.
func detectErrorEnvelope(chunk string) (string, bool) {
	trimmed := strings.TrimSpace(chunk)
	if strings.HasPrefix(trimmed, "{") {
		var env errorEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
			if env.Type != errorMarkerType {
				return "", false
			}
			if env.Message == "" {
				return genericStreamFailure, true
			}
			return env.Message, true
		}
	}

	// Envelope embedded mid-chunk, or mangled by a chunk boundary: fall
	// back to the generic message when it cannot be parsed out.
	if idx := strings.Index(chunk, `"type":"`+errorMarkerType+`"`); idx >= 0 {
		if start := strings.LastIndex(chunk[:idx], "{"); start >= 0 {
			var env errorEnvelope
			if err := json.Unmarshal([]byte(chunk[start:]), &env); err == nil &&
				env.Type == errorMarkerType && env.Message != "" {
				return env.Message, true
			}
		}
		return genericStreamFailure, true
	}
	return "", false
}
