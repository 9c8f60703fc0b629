// Package store persists chat sessions locally in SQLite: the session
// identifiers that correlate requests to a conversation, plus a cache of
// completed turns so past conversations can be reopened offline.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"finchat/internal/logging"
)

// Session is a locally tracked conversation.
type Session struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	LastActive time.Time
}

// Turn is one cached user/assistant exchange.
type Turn struct {
	SessionID string
	Number    int
	UserInput string
	Response  string
	CreatedAt time.Time
}

// SessionStore is the SQLite-backed session bookkeeping.
type SessionStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSessionStore initializes the SQLite database at the given path.
func NewSessionStore(path string) (*SessionStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewSessionStore")
	defer timer.Stop()

	logging.Store("Initializing SessionStore at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &SessionStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_active TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS turns (
		session_id  TEXT NOT NULL,
		turn_number INTEGER NOT NULL,
		user_input  TEXT NOT NULL,
		response    TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, turn_number),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateSession registers a new session and returns it. The identifier is
// generated locally and sent with every chat request for this conversation.
func (s *SessionStore) CreateSession(title string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		"INSERT INTO sessions (id, title, created_at, last_active) VALUES (?, ?, ?, ?)",
		id, title, now, now,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to create session: %v", err)
		return nil, err
	}

	logging.Session("Created session id=%s title=%q", id, title)
	return &Session{ID: id, Title: title, CreatedAt: now, LastActive: now}, nil
}

// TouchSession bumps last_active, optionally retitling the session.
func (s *SessionStore) TouchSession(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title != "" {
		_, err := s.db.Exec(
			"UPDATE sessions SET last_active = ?, title = ? WHERE id = ?",
			time.Now().UTC(), title, id,
		)
		return err
	}
	_, err := s.db.Exec("UPDATE sessions SET last_active = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

// GetSession loads a single session by ID.
func (s *SessionStore) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess Session
	err := s.db.QueryRow(
		"SELECT id, title, created_at, last_active FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.Title, &sess.CreatedAt, &sess.LastActive)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListSessions returns sessions ordered by most recent activity.
func (s *SessionStore) ListSessions(limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT id, title, created_at, last_active FROM sessions ORDER BY last_active DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.CreatedAt, &sess.LastActive); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SaveTurn caches a completed exchange.
// Uses INSERT OR IGNORE for idempotent syncing (duplicate turns are silently skipped).
func (s *SessionStore) SaveTurn(sessionID string, number int, userInput, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Saving turn session=%s number=%d", sessionID, number)

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO turns (session_id, turn_number, user_input, response, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, number, userInput, response, time.Now().UTC(),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save turn: %v", err)
		return err
	}
	return nil
}

// NextTurnNumber returns the turn number the next exchange should use.
func (s *SessionStore) NextTurnNumber(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(turn_number) FROM turns WHERE session_id = ?", sessionID,
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}

// History returns a session's cached turns in order.
func (s *SessionStore) History(sessionID string, limit int) ([]Turn, error) {
	timer := logging.StartTimer(logging.CategoryStore, "History")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT session_id, turn_number, user_input, response, created_at
		 FROM turns WHERE session_id = ? ORDER BY turn_number ASC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.SessionID, &turn.Number, &turn.UserInput, &turn.Response, &turn.CreatedAt); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// DeleteSession removes a session and its cached turns.
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM turns WHERE session_id = ?", id); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return err
	}
	logging.Session("Deleted session id=%s", id)
	return nil
}

// Close releases the database.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
