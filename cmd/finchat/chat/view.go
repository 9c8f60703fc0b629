// Package chat - view rendering for the chat widget.
package chat

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m *Model) View() string {
	var sb strings.Builder

	header := headerStyle.Render(fmt.Sprintf("finchat %s", m.version))
	session := systemStyle.Render(fmt.Sprintf("session %s", m.sessionID))
	sb.WriteString(header + "  " + session + "\n\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.streaming {
		sb.WriteString(m.spin.View() + " assistant is responding...\n")
	} else {
		sb.WriteString(m.textarea.View() + "\n")
	}

	sb.WriteString(footerStyle.Render("enter: send • /help: commands • ctrl+c: quit"))
	return sb.String()
}

// renderHistory renders the transcript, including any in-flight partial
// assistant response.
func (m *Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			sb.WriteString(userLabelStyle.Render("You") + "\n")
			sb.WriteString(msg.Content)
			sb.WriteString("\n")

		case "system":
			sb.WriteString(systemStyle.Render(msg.Content))
			sb.WriteString("\n")

		default: // "assistant"
			sb.WriteString(assistantLabelStyle.Render("Assistant") + "\n")
			sb.WriteString(m.renderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	if m.streaming && m.partial.Len() > 0 {
		sb.WriteString(assistantLabelStyle.Render("Assistant") + "\n")
		// Raw text while streaming; markdown is rendered once complete
		sb.WriteString(m.partial.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMarkdown renders assistant markdown, falling back to raw text when
// the renderer is unavailable or panics on malformed input.
func (m *Model) renderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
