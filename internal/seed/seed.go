// ABOUTME: Demo fixture loading from TOML files into the store.
// ABOUTME: Used by `duochat serve --seed` to populate an empty database.

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"

	"github.com/2389/duochat/internal/store"
)

// File is a parsed seed fixture: users first, then messages between
// them. Message from/to refer to the 1-based order of the users array,
// which matches the ids the store will assign into an empty database.
type File struct {
	Users    []UserFixture    `toml:"users"`
	Messages []MessageFixture `toml:"messages"`
}

// UserFixture mirrors the registration payload.
type UserFixture struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
	Senha string `toml:"senha"`
}

// MessageFixture is one seeded message.
type MessageFixture struct {
	From    int64  `toml:"from"`
	To      int64  `toml:"to"`
	Content string `toml:"content"`
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("validating seed file: %w", err)
	}
	return &f, nil
}

func (f *File) validate() error {
	for i, u := range f.Users {
		if u.Name == "" || u.Email == "" || u.Senha == "" {
			return fmt.Errorf("user %d: name, email and senha are required", i+1)
		}
	}
	for i, m := range f.Messages {
		if m.From < 1 || m.From > int64(len(f.Users)) {
			return fmt.Errorf("message %d: from %d does not refer to a seeded user", i+1, m.From)
		}
		if m.To < 1 || m.To > int64(len(f.Users)) {
			return fmt.Errorf("message %d: to %d does not refer to a seeded user", i+1, m.To)
		}
		if m.Content == "" {
			return fmt.Errorf("message %d: content must not be empty", i+1)
		}
	}
	return nil
}

// Apply inserts the fixtures. If the database already has users the
// seed is skipped, so restarting a seeded server does not duplicate
// demo data.
func Apply(ctx context.Context, st store.Store, f *File, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seed")

	_, err := st.GetUser(ctx, 1)
	if err == nil {
		logger.Info("database already has users, skipping seed")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking for existing users: %w", err)
	}

	for _, u := range f.Users {
		user := &store.User{Name: u.Name, Email: u.Email, Secret: u.Senha}
		if err := st.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seeding user %q: %w", u.Name, err)
		}
	}
	for _, m := range f.Messages {
		msg := &store.Message{FromID: m.From, ToID: m.To, Content: m.Content}
		if err := st.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("seeding message: %w", err)
		}
	}

	logger.Info("seed applied", "users", len(f.Users), "messages", len(f.Messages))
	return nil
}
