// ABOUTME: Store interface and data types for duochat persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// User represents a registered user. Secret is stored exactly as
// submitted; this demo deliberately has no password hashing.
type User struct {
	ID     int64
	Name   string
	Email  string
	Secret string
}

// Message represents a single message between two users.
// IDs are assigned by the store and are strictly increasing in
// insertion order, which lets clients use the highest id they have
// seen as a watermark for incremental sync.
type Message struct {
	ID        int64
	FromID    int64
	ToID      int64
	Content   string
	CreatedAt time.Time
}

// Store defines the interface for user and message persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)

	// Messages
	CreateMessage(ctx context.Context, msg *Message) error
	ListConversation(ctx context.Context, userID, peerID int64) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}
