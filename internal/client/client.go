// ABOUTME: Typed HTTP client for the duochat API.
// ABOUTME: Used by the TUI and the session loop; decodes the server's error envelope.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/2389/duochat/internal/api"
)

// ErrNotFound is returned when the server reports a 404 for a lookup.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response reported by the server, as opposed to
// a transport failure reaching it.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Client talks to a duochat server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// GetUser looks up a user by id. Returns ErrNotFound for unknown ids.
func (c *Client) GetUser(ctx context.Context, id int64) (*api.UserResponse, error) {
	var user api.UserResponse
	if err := c.get(ctx, fmt.Sprintf("/api/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new user and returns the created record,
// including its assigned id.
func (c *Client) CreateUser(ctx context.Context, name, email, senha string) (*api.CreateUserResponse, error) {
	req := api.CreateUserRequest{Name: name, Email: email, Senha: senha}
	var created api.CreateUserResponse
	if err := c.post(ctx, "/api/users", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListMessages fetches the full conversation between two users, ordered
// by id ascending.
func (c *Client) ListMessages(ctx context.Context, userID, peerID int64) ([]api.MessageResponse, error) {
	var messages []api.MessageResponse
	path := fmt.Sprintf("/api/messages?userId=%d&peerId=%d", userID, peerID)
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage persists a message and returns the stored row.
func (c *Client) SendMessage(ctx context.Context, fromID, toID int64, content string) (*api.MessageResponse, error) {
	req := api.SendMessageRequest{FromID: &fromID, ToID: &toID, Content: content}
	var sent api.MessageResponse
	if err := c.post(ctx, "/api/messages", req, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// Health checks that the server is reachable and alive.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", &struct{}{})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		// Body may not be JSON for transport-level errors; ignore decode failures.
		_ = json.NewDecoder(resp.Body).Decode(&envelope)

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
