// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database exists per connection; cap the pool at one
	// so every query sees the same data.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			secret TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_id INTEGER NOT NULL,
			to_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_messages_pair
			ON messages(from_id, to_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row and assigns its identifier.
// Email is not required to be unique; duplicate registrations create
// separate users.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, secret) VALUES (?, ?, ?)",
		user.Name, user.Email, user.Secret)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUser returns the user with the given id, or ErrNotFound.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, secret FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Secret)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// CreateMessage inserts a new message row, assigning its identifier and
// creation timestamp. Sender and recipient ids are not checked against
// the users table.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (from_id, to_id, content, created_at) VALUES (?, ?, ?, ?)",
		msg.FromID, msg.ToID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading message id: %w", err)
	}
	msg.ID = id
	return nil
}

// ListConversation returns all messages exchanged between the two users,
// in either direction, ordered by id ascending. Ids with no matching
// rows yield an empty slice, not an error.
func (s *SQLiteStore) ListConversation(ctx context.Context, userID, peerID int64) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_id, to_id, content, created_at
		FROM messages
		WHERE (from_id = ? AND to_id = ?)
		   OR (from_id = ? AND to_id = ?)
		ORDER BY id ASC`,
		userID, peerID, peerID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
