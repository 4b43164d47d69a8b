// ABOUTME: HTTP JSON handlers for the duochat user and message endpoints.
// ABOUTME: Maps request validation and store errors onto 400/404/500 responses.

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2389/duochat/internal/store"
)

// UserResponse is the JSON response for GET /api/users/{id}.
// Email and secret are deliberately excluded from the read path.
type UserResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateUserRequest is the JSON request body for POST /api/users.
// The wire name for the secret is "senha", kept from the original
// interface of this service.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// CreateUserResponse is the JSON response for POST /api/users.
type CreateUserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// SendMessageRequest is the JSON request body for POST /api/messages.
// Pointer fields distinguish a missing id from a zero one.
type SendMessageRequest struct {
	FromID  *int64 `json:"from_id"`
	ToID    *int64 `json:"to_id"`
	Content string `json:"content"`
}

// MessageResponse is the JSON shape of a persisted message.
type MessageResponse struct {
	ID        int64  `json:"id"`
	FromID    int64  `json:"from_id"`
	ToID      int64  `json:"to_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Server exposes the duochat HTTP API over a store.
// Handlers are stateless; the store is the only shared resource.
type Server struct {
	store  store.Store
	logger *slog.Logger
}

// New creates an API server backed by the given store.
func New(st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		logger: logger.With("component", "api"),
	}
}

// RegisterRoutes registers the API endpoints on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", s.handleCreateUser)
	mux.HandleFunc("/api/users/", s.handleGetUser)
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/health", s.handleHealth)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetUser handles GET /api/users/{id} requests.
// A non-integer id is a 400, an unknown one a 404.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/users/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, UserResponse{ID: user.ID, Name: user.Name})
}

// handleCreateUser handles POST /api/users requests.
// All three fields are required after trimming. Email uniqueness is not
// enforced; the secret is stored as given.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	senha := strings.TrimSpace(req.Senha)
	switch {
	case name == "":
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	case email == "":
		s.sendJSONError(w, http.StatusBadRequest, "email is required")
		return
	case senha == "":
		s.sendJSONError(w, http.StatusBadRequest, "senha is required")
		return
	}

	user := &store.User{Name: name, Email: email, Secret: senha}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		s.logger.Error("failed to create user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("user registered", "id", user.ID)
	s.sendJSON(w, http.StatusCreated, CreateUserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Senha: user.Secret,
	})
}

// handleMessages dispatches /api/messages by method.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListMessages(w, r)
	case http.MethodPost:
		s.handleSendMessage(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListMessages handles GET /api/messages?userId=A&peerId=B.
// The conversation covers both directions of the pair and is returned
// whole, ordered by id ascending. Unknown ids yield an empty array.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "userId must be an integer")
		return
	}
	peerID, err := strconv.ParseInt(r.URL.Query().Get("peerId"), 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "peerId must be an integer")
		return
	}

	messages, err := s.store.ListConversation(r.Context(), userID, peerID)
	if err != nil {
		s.logger.Error("failed to list conversation", "user_id", userID, "peer_id", peerID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, toMessageResponse(m))
	}
	s.sendJSON(w, http.StatusOK, response)
}

// handleSendMessage handles POST /api/messages requests.
// Content is trimmed exactly once here; sender and recipient ids are
// not checked against the users table.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.FromID == nil || req.ToID == nil {
		s.sendJSONError(w, http.StatusBadRequest, "from_id and to_id must be integers")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.sendJSONError(w, http.StatusBadRequest, "content must not be empty")
		return
	}

	msg := &store.Message{FromID: *req.FromID, ToID: *req.ToID, Content: content}
	if err := s.store.CreateMessage(r.Context(), msg); err != nil {
		s.logger.Error("failed to create message", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func toMessageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		FromID:    m.FromID,
		ToID:      m.ToID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
