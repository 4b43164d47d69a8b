// Package store provides persistent storage for duochat using SQLite.
//
// # Data Models
//
//   - User: Registered user with display name, email, and secret
//   - Message: Directed message between two users with a server-assigned
//     id and creation timestamp
//
// Rows are append-only: users and messages are never updated or deleted.
// Identifiers come from SQLite AUTOINCREMENT and are strictly increasing
// in insertion order, which clients rely on for incremental sync.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// The schema is created automatically on store initialization.
//
// # Error Handling
//
// GetUser returns ErrNotFound when no row matches. All methods accept
// context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore(":memory:") for tests with a real in-memory SQLite
// database.
package store
