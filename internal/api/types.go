package api

import "time"

// ChatTurn is one user/assistant exchange within a session.
type ChatTurn struct {
	SessionID string    `json:"session_id"`
	Turn      int       `json:"turn"`
	UserInput string    `json:"user_input"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// chatRequest is the wire shape of a streamed chat turn request.
type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Quiz is a set of questions on a financial-literacy topic.
type Quiz struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// QuizSubmission maps question IDs to the chosen option index.
type QuizSubmission struct {
	QuizID  string         `json:"quiz_id"`
	Answers map[string]int `json:"answers"`
}

// QuizResult is the backend's grading of a submission.
type QuizResult struct {
	QuizID  string `json:"quiz_id"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Passed  bool   `json:"passed"`
	Remarks string `json:"remarks,omitempty"`
}

// DiagnosticTest is the placement test determining a user's starting level.
type DiagnosticTest struct {
	ID        string         `json:"id"`
	Questions []QuizQuestion `json:"questions"`
}

// DiagnosticResult carries the assigned level after a placement test.
type DiagnosticResult struct {
	TestID string `json:"test_id"`
	Level  string `json:"level"` // beginner, intermediate, advanced
	Score  int    `json:"score"`
	Total  int    `json:"total"`
}

// Course is a financial-literacy course summary.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	LessonCount int    `json:"lesson_count"`
}

// Lesson is a single unit of course content. Body is markdown.
type Lesson struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Order    int    `json:"order"`
}

// Profile is the user profile shown and edited in the profile view.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Level     string    `json:"level"`
	Goals     []string  `json:"goals,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResult describes a stored file after a successful upload.
type UploadResult struct {
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// tokenResponse is the wire shape of login and refresh responses.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// errorEnvelope is the in-band error payload a stream (or an error status
// body) may carry despite a success-level transport status.
type errorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
