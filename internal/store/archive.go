// Package store archives ended tutoring sessions in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"Kashar/internal/session"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no archived session has the given id
var ErrNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	mode TEXT,
	channel_name TEXT,
	start_time DATETIME,
	end_time DATETIME
);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session_id TEXT,
	seq INTEGER,
	role TEXT,
	content TEXT,
	timestamp DATETIME,
	sources TEXT,
	is_error INTEGER,
	delivery TEXT,
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);
CREATE INDEX IF NOT EXISTS messages_session ON messages(session_id, seq);`

// Archive is the local record of past sessions
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Summary describes one archived session
type Summary struct {
	ID           string
	Mode         session.Mode
	StartedAt    time.Time
	EndedAt      time.Time
	MessageCount int
}

// Open opens or creates the archive database at path
func Open(path string, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer; this also keeps :memory: on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Archive{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores a session and its transcript, replacing any earlier copy
func (a *Archive) Save(ctx context.Context, sess session.Session, messages []session.Message) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (id, mode, channel_name, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
		sess.ID, string(sess.Mode), sess.ChannelName, sess.StartedAt, a.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	for i, msg := range messages {
		sources, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("failed to encode sources: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO messages (id, session_id, seq, role, content, timestamp, sources, is_error, delivery) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			msg.ID, sess.ID, i, string(msg.Role), msg.Content, msg.Timestamp, string(sources), msg.IsError, string(msg.Delivery),
		)
		if err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.Info("session archived", "session_id", sess.ID, "message_count", len(messages))
	return nil
}

// List returns the most recent sessions first
func (a *Archive) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.mode, s.start_time, s.end_time, COUNT(m.id)
		FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.end_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var mode string
		if err := rows.Scan(&s.ID, &mode, &s.StartedAt, &s.EndedAt, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Mode = session.Mode(mode)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Load returns an archived session and its transcript in order
func (a *Archive) Load(ctx context.Context, id string) (*session.Session, []session.Message, error) {
	var mode string
	sess := &session.Session{ID: id}
	err := a.db.QueryRowContext(ctx, "SELECT mode, channel_name, start_time FROM sessions WHERE id = ?", id).
		Scan(&mode, &sess.ChannelName, &sess.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.Mode = session.Mode(mode)

	rows, err := a.db.QueryContext(ctx,
		"SELECT id, role, content, timestamp, sources, is_error, delivery FROM messages WHERE session_id = ? ORDER BY seq",
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	messages := []session.Message{}
	for rows.Next() {
		var msg session.Message
		var role, sources, delivery string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.Timestamp, &sources, &msg.IsError, &delivery); err != nil {
			return nil, nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = session.Role(role)
		msg.Delivery = session.Delivery(delivery)
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			a.logger.Warn("failed to decode sources", "message_id", msg.ID, "error", err)
		}
		messages = append(messages, msg)
	}
	return sess, messages, rows.Err()
}
