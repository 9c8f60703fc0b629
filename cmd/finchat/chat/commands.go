// Package chat - /command handling for the chat widget.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"finchat/internal/api"
)

// Async command results
type commandResultMsg string

type commandErrMsg struct{ err error }

const helpText = `Commands:
  /help               Show this help
  /new                Start a new session
  /sessions           List recent sessions
  /resume <id>        Resume a session
  /clear              Clear the transcript (keeps the session)
  /quiz <topic>       Fetch a quiz on a topic
  /answer 1=2 2=0 ... Submit quiz answers (question=option, 1-based option)
  /courses            List available courses
  /profile            Show your profile
  /upload <path>      Upload a file for the assistant to use
  /quit               Exit`

// handleCommand processes all /command inputs from the user.
func (m *Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/help":
		m.appendSystem(helpText)
		return m, nil

	case "/clear":
		m.history = nil
		m.refreshViewport()
		return m, nil

	case "/new":
		sess, err := m.store.CreateSession("")
		if err != nil {
			m.appendSystem(errorStyle.Render("error: " + err.Error()))
			return m, nil
		}
		m.sessionID = sess.ID
		m.turnCount = 0
		m.history = nil
		m.appendSystem(fmt.Sprintf("Started new session %s", sess.ID))
		return m, nil

	case "/sessions":
		sessions, err := m.store.ListSessions(10)
		if err != nil {
			m.appendSystem(errorStyle.Render("error: " + err.Error()))
			return m, nil
		}
		if len(sessions) == 0 {
			m.appendSystem("No sessions yet.")
			return m, nil
		}
		var sb strings.Builder
		sb.WriteString("Recent sessions:\n")
		for _, s := range sessions {
			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&sb, "  %s  %s  %s\n", s.ID, s.LastActive.Format("2006-01-02 15:04"), title)
		}
		m.appendSystem(sb.String())
		return m, nil

	case "/resume":
		if len(args) != 1 {
			m.appendSystem("Usage: /resume <session-id>")
			return m, nil
		}
		return m.resumeSession(args[0])

	case "/quiz":
		if len(args) == 0 {
			m.appendSystem("Usage: /quiz <topic>")
			return m, nil
		}
		topic := strings.Join(args, " ")
		return m, m.fetchQuiz(topic)

	case "/answer":
		if m.quiz == nil {
			m.appendSystem("No quiz in progress. Fetch one with /quiz <topic>.")
			return m, nil
		}
		answers, err := parseAnswers(args, m.quiz.quiz)
		if err != nil {
			m.appendSystem(errorStyle.Render(err.Error()))
			return m, nil
		}
		return m, m.submitQuiz(answers)

	case "/courses":
		return m, m.fetchCourses()

	case "/profile":
		return m, m.fetchProfile()

	case "/upload":
		if len(args) != 1 {
			m.appendSystem("Usage: /upload <path>")
			return m, nil
		}
		m.appendSystem(fmt.Sprintf("Uploading %s...", args[0]))
		return m, m.uploadFile(args[0])
	}

	m.appendSystem(fmt.Sprintf("Unknown command %s. Try /help.", cmd))
	return m, nil
}

// resumeSession switches to an existing session and restores its cached turns.
func (m *Model) resumeSession(id string) (tea.Model, tea.Cmd) {
	sess, err := m.store.GetSession(id)
	if err != nil {
		m.appendSystem(errorStyle.Render("error: " + err.Error()))
		return m, nil
	}

	turns, err := m.store.History(sess.ID, 100)
	if err != nil {
		m.appendSystem(errorStyle.Render("error: " + err.Error()))
		return m, nil
	}

	// Turn numbering continues from the store, not from the displayed
	// window; History caps what is shown, not what exists.
	next, err := m.store.NextTurnNumber(sess.ID)
	if err != nil {
		m.appendSystem(errorStyle.Render("error: " + err.Error()))
		return m, nil
	}

	m.sessionID = sess.ID
	m.history = nil
	for _, turn := range turns {
		m.history = append(m.history,
			Message{Role: "user", Content: turn.UserInput, Time: turn.CreatedAt},
			Message{Role: "assistant", Content: turn.Response, Time: turn.CreatedAt},
		)
	}
	m.turnCount = next - 1
	m.appendSystem(fmt.Sprintf("Resumed session %s (%d turns)", sess.ID, next-1))
	return m, nil
}

// fetchQuiz loads a quiz off the update loop and renders it as markdown.
func (m *Model) fetchQuiz(topic string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		quiz, err := client.GetQuiz(ctx, topic)
		if err != nil {
			return commandErrMsg{err: err}
		}
		return quizFetchedMsg{quiz: quiz}
	}
}

type quizFetchedMsg struct{ quiz *api.Quiz }

type quizGradedMsg struct{ result *api.QuizResult }

// submitQuiz grades the pending quiz.
func (m *Model) submitQuiz(answers map[string]int) tea.Cmd {
	client := m.client
	quizID := m.quiz.quiz.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := client.SubmitQuiz(ctx, quizID, answers)
		if err != nil {
			return commandErrMsg{err: err}
		}
		return quizGradedMsg{result: result}
	}
}

// uploadFile sends a document to the backend off the update loop.
func (m *Model) uploadFile(path string) tea.Cmd {
	client := m.client
	policy := m.upload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := client.Upload(ctx, path, policy)
		if err != nil {
			return commandErrMsg{err: err}
		}
		return commandResultMsg(fmt.Sprintf("Uploaded %s (%d bytes) as %s",
			result.Name, result.Size, result.FileID))
	}
}

// fetchCourses lists the course catalog.
func (m *Model) fetchCourses() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		courses, err := client.ListCourses(ctx)
		if err != nil {
			return commandErrMsg{err: err}
		}
		var sb strings.Builder
		sb.WriteString("Courses:\n")
		for _, c := range courses {
			fmt.Fprintf(&sb, "  %s [%s] %s (%d lessons)\n", c.ID, c.Level, c.Title, c.LessonCount)
		}
		return commandResultMsg(sb.String())
	}
}

// fetchProfile shows the user profile.
func (m *Model) fetchProfile() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		profile, err := client.GetProfile(ctx)
		if err != nil {
			return commandErrMsg{err: err}
		}
		return commandResultMsg(fmt.Sprintf("Profile: %s <%s> level=%s goals=%s",
			profile.Name, profile.Email, profile.Level, strings.Join(profile.Goals, ", ")))
	}
}

// parseAnswers turns "1=2 2=0" tokens into a question-ID answer map. The
// question number is 1-based into the quiz's question list; the option is a
// 1-based index into the question's options.
func parseAnswers(tokens []string, quiz *api.Quiz) (map[string]int, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("usage: /answer 1=2 2=0 ...")
	}

	answers := make(map[string]int)
	for _, token := range tokens {
		q, opt, found := strings.Cut(token, "=")
		if !found {
			return nil, fmt.Errorf("bad answer %q, expected question=option", token)
		}
		qn, err := strconv.Atoi(q)
		if err != nil || qn < 1 || qn > len(quiz.Questions) {
			return nil, fmt.Errorf("bad question number %q", q)
		}
		question := quiz.Questions[qn-1]
		on, err := strconv.Atoi(opt)
		if err != nil || on < 1 || on > len(question.Options) {
			return nil, fmt.Errorf("bad option %q for question %d", opt, qn)
		}
		answers[question.ID] = on - 1
	}
	return answers, nil
}

// renderQuiz formats a quiz as markdown for the transcript.
func renderQuiz(quiz *api.Quiz) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", quiz.Title)
	for i, q := range quiz.Questions {
		fmt.Fprintf(&sb, "**%d. %s**\n\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(&sb, "  %d. %s\n", j+1, opt)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Answer with /answer 1=2 2=1 ...\n")
	return sb.String()
}
