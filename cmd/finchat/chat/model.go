// Package chat provides the interactive TUI chat widget for finchat.
// The widget is split across multiple files:
//   - model.go: Types, Init, Update loop (this file)
//   - commands.go: /command handling
//   - process.go: Message sending and stream consumption
//   - view.go: Rendering functions
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"finchat/internal/api"
	"finchat/internal/config"
	"finchat/internal/logging"
	"finchat/internal/store"
)

// Config holds everything the widget needs to run.
type Config struct {
	Client  *api.Client
	Store   *store.SessionStore
	Upload  config.UploadConfig
	Version string
}

// Message is one entry in the transcript.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
	Time    time.Time
}

// pendingQuiz tracks a quiz fetched with /quiz awaiting /answer.
type pendingQuiz struct {
	quiz *api.Quiz
}

// Model is the bubbletea model for the chat widget.
type Model struct {
	client *api.Client
	store  *store.SessionStore
	upload config.UploadConfig

	viewport  viewport.Model
	textarea  textarea.Model
	spin      spinner.Model
	renderer  *glamour.TermRenderer
	width     int
	height    int

	sessionID string
	turnCount int
	history   []Message

	// In-flight stream state
	streaming   bool
	pendingUser string
	partial     strings.Builder
	contentChan <-chan string
	errorChan   <-chan error
	cancel      context.CancelFunc

	quiz *pendingQuiz

	version string
	err     error
}

// Styles
var (
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).MarginTop(1)
	systemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	footerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// New builds the widget with a fresh or resumed session.
func New(cfg Config) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Ask about budgeting, saving, investing... (/help for commands)"
	ta.Focus()
	ta.SetHeight(2)
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	sess, err := cfg.Store.CreateSession("")
	if err != nil {
		return nil, err
	}

	m := &Model{
		client:    cfg.Client,
		store:     cfg.Store,
		upload:    cfg.Upload,
		viewport:  vp,
		textarea:  ta,
		spin:      sp,
		sessionID: sess.ID,
		version:   cfg.Version,
	}
	m.history = append(m.history, Message{
		Role:    "system",
		Content: "Welcome to finchat. Type a question, or /help for commands.",
		Time:    time.Now(),
	})
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.textarea.SetWidth(msg.Width - 2)
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-4),
		)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if m.streaming {
				// One in-flight turn at a time
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.sendMessage(input)
		}

	case streamChunkMsg:
		m.partial.WriteString(string(msg))
		m.refreshViewport()
		return m, m.waitForStream()

	case streamDoneMsg:
		return m.finishTurn()

	case streamErrMsg:
		return m.failTurn(msg.err)

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case quizFetchedMsg:
		m.quiz = &pendingQuiz{quiz: msg.quiz}
		m.history = append(m.history, Message{Role: "assistant", Content: renderQuiz(msg.quiz), Time: time.Now()})
		m.refreshViewport()
		return m, nil

	case quizGradedMsg:
		// A graded quiz is no longer answerable
		m.quiz = nil
		r := msg.result
		m.appendSystem(fmt.Sprintf("Quiz %s: %d/%d (passed: %v) %s",
			r.QuizID, r.Score, r.Total, r.Passed, r.Remarks))
		return m, nil

	case commandResultMsg:
		m.appendSystem(string(msg))
		return m, nil

	case commandErrMsg:
		m.appendSystem(errorStyle.Render("error: " + msg.err.Error()))
		return m, nil
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// appendSystem adds a system notice to the transcript.
func (m *Model) appendSystem(content string) {
	m.history = append(m.history, Message{Role: "system", Content: content, Time: time.Now()})
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

// Run starts the widget and blocks until exit.
func Run(cfg Config) error {
	logging.UI("chat widget starting")
	m, err := New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
