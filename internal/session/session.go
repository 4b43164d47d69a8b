// ABOUTME: Client-side session state machine for a two-party conversation.
// ABOUTME: Owns login state, the selected peer, the render watermark, and the poll loop.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2389/duochat/internal/api"
	"github.com/2389/duochat/internal/client"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	// StateLoggedOut is the initial state; no local user is set.
	StateLoggedOut State = iota
	// StateLoggedIn means a user is resolved but no peer is loaded yet.
	StateLoggedIn
	// StatePolling means a peer is loaded and the poll loop is active
	// (or paused while the client is not visible).
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateLoggedIn:
		return "logged-in"
	case StatePolling:
		return "polling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotLoggedIn is returned by operations that need a resolved user.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNoPeer is returned by operations that need a loaded peer.
	ErrNoPeer = errors.New("no peer loaded")
	// ErrAlreadyLoggedIn is returned by Login when a user is already set.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrSendInFlight is returned by Send while a previous send is outstanding.
	ErrSendInFlight = errors.New("send already in flight")
	// ErrEmptyContent is returned by Send for whitespace-only content.
	ErrEmptyContent = errors.New("content must not be empty")
)

// View receives rendered message updates. Reset replaces the visible
// list; Append adds new rows at the end. Implementations must not call
// back into the Session.
type View interface {
	Reset(msgs []api.MessageResponse)
	Append(msgs []api.MessageResponse)
}

// Options tune a session. Zero values fall back to the defaults
// (2 second poll interval, 100 retained rows).
type Options struct {
	PollInterval time.Duration
	HistoryLimit int
}

const (
	defaultPollInterval = 2 * time.Second
	defaultHistoryLimit = 100
)

// Session drives the client side of a two-party conversation: an
// identifier-only login, one selected peer, and a fixed-interval poll
// loop that renders only messages above the watermark. All methods are
// safe for concurrent use.
type Session struct {
	api  *client.Client
	view View
	opts Options

	poller *repeatingTask

	mu        sync.Mutex
	state     State
	me        *api.UserResponse
	peer      *api.UserResponse
	watermark int64
	rendered  []api.MessageResponse
	visible   bool
	sending   bool
}

// New creates a logged-out session over the given API client. The view
// may be nil when only the state machine is of interest.
func New(c *client.Client, view View, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	s := &Session{
		api:     c,
		view:    view,
		opts:    opts,
		visible: true,
	}
	s.poller = newRepeatingTask(opts.PollInterval, func(ctx context.Context) {
		// Poll failures are transient by design; the next tick retries.
		_ = s.Refresh(ctx)
	})
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Me returns the logged-in user, or nil.
func (s *Session) Me() *api.UserResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.me
}

// Peer returns the loaded peer, or nil.
func (s *Session) Peer() *api.UserResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// Watermark returns the highest message id rendered so far.
func (s *Session) Watermark() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// Rendered returns a copy of the currently retained rendered messages.
func (s *Session) Rendered() []api.MessageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.MessageResponse, len(s.rendered))
	copy(out, s.rendered)
	return out
}

// Polling reports whether the poll loop is currently running.
func (s *Session) Polling() bool {
	return s.poller.Running()
}

// Login resolves the numeric identifier to a user record and moves the
// session to StateLoggedIn. There is no credential check; the id is the
// whole login, as in the original system.
func (s *Session) Login(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.state != StateLoggedOut {
		s.mu.Unlock()
		return ErrAlreadyLoggedIn
	}
	s.mu.Unlock()

	user, err := s.api.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up user %d: %w", id, err)
	}

	s.mu.Lock()
	s.me = user
	s.state = StateLoggedIn
	s.mu.Unlock()
	return nil
}

// LoadPeer resolves the peer identifier, renders the conversation once,
// and starts the poll loop (unless the client is currently not visible).
// Loading a different peer restarts the conversation from scratch.
func (s *Session) LoadPeer(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.me == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.mu.Unlock()

	peer, err := s.api.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up peer %d: %w", id, err)
	}

	s.poller.Stop()

	s.mu.Lock()
	s.peer = peer
	s.state = StatePolling
	s.watermark = 0
	s.rendered = nil
	visible := s.visible
	s.mu.Unlock()

	// The initial render may fail transiently; the poll loop still gets
	// started so the next tick retries, and the error is surfaced for
	// the caller to display.
	err = s.Refresh(ctx)
	if visible {
		s.poller.Start()
	}
	return err
}

// Send posts a message to the loaded peer and immediately refreshes the
// conversation, out of band of the poll timer. Only one send may be in
// flight at a time.
func (s *Session) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	s.mu.Lock()
	if s.me == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	if s.peer == nil {
		s.mu.Unlock()
		return ErrNoPeer
	}
	if s.sending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.sending = true
	me, peer := s.me, s.peer
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	if _, err := s.api.SendMessage(ctx, me.ID, peer.ID, content); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SetVisible pauses the poll loop when the client is backgrounded and
// resumes it on return. The watermark and rendered rows are kept, so
// resuming renders only what arrived in between.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	polling := s.state == StatePolling
	s.mu.Unlock()

	if !polling {
		return
	}
	if visible {
		s.poller.Start()
	} else {
		s.poller.Stop()
	}
}

// Logout cancels the poll loop and clears all client-local state,
// returning the session to StateLoggedOut.
func (s *Session) Logout() {
	s.poller.Stop()

	s.mu.Lock()
	s.state = StateLoggedOut
	s.me = nil
	s.peer = nil
	s.watermark = 0
	s.rendered = nil
	s.sending = false
	s.mu.Unlock()
}

// Refresh fetches the conversation once and renders any messages above
// the watermark. Called by the poll loop on every tick and by Send
// right after a successful post. Refreshing with nothing new leaves the
// rendered list and watermark unchanged.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.me == nil || s.peer == nil {
		s.mu.Unlock()
		return ErrNoPeer
	}
	meID, peerID := s.me.ID, s.peer.ID
	s.mu.Unlock()

	msgs, err := s.api.ListMessages(ctx, meID, peerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// The peer may have changed or the session ended while the request
	// was in flight; drop the stale result.
	if s.me == nil || s.peer == nil || s.me.ID != meID || s.peer.ID != peerID {
		s.mu.Unlock()
		return nil
	}

	var fresh []api.MessageResponse
	for _, m := range msgs {
		if m.ID > s.watermark {
			fresh = append(fresh, m)
		}
	}

	if len(fresh) == 0 {
		s.mu.Unlock()
		return nil
	}

	firstRender := s.watermark == 0 && len(fresh) == len(msgs)

	if firstRender {
		s.rendered = append([]api.MessageResponse(nil), fresh...)
	} else {
		s.rendered = append(s.rendered, fresh...)
	}
	s.watermark = fresh[len(fresh)-1].ID

	// Bound the retained rows; the watermark is unaffected.
	if excess := len(s.rendered) - s.opts.HistoryLimit; excess > 0 {
		s.rendered = append([]api.MessageResponse(nil), s.rendered[excess:]...)
	}
	retained := append([]api.MessageResponse(nil), s.rendered...)
	view := s.view
	s.mu.Unlock()

	if view != nil {
		if firstRender {
			view.Reset(retained)
		} else {
			view.Append(fresh)
		}
	}
	return nil
}
