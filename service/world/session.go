package world

import (
	"sync"
)

// SessionState is the lifecycle state of one connection.
type SessionState int32

const (
	// SessionConnected: transport open, no participant entry yet.
	SessionConnected SessionState = iota
	// SessionActive: participant registered, updates accepted, broadcasts received.
	SessionActive
	// SessionClosed: participant removed; terminal, no way back.
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionConnected:
		return "connected"
	case SessionActive:
		return "active"
	case SessionClosed:
		return "closed"
	}
	return "unknown"
}

// Session drives the per-connection state machine
// Connected -> Active -> Closed. Disconnect signals can arrive from several
// places at once (explicit leave frame, transport close, read error); Close
// collapses them into exactly one transition so removal and the departure
// broadcast happen at most once per connection.
type Session struct {
	client *Client

	mu    sync.Mutex
	state SessionState
}

func NewSession(client *Client) *Session {
	return &Session{client: client, state: SessionConnected}
}

// ConnID returns the connection id the session is bound to. Mutations are
// always resolved through this stored id, never through payload fields, so
// a client cannot impersonate another participant.
func (s *Session) ConnID() string { return s.client.ConnID }

// Client returns the underlying connection.
func (s *Session) Client() *Client { return s.client }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether the session accepts state updates.
func (s *Session) Active() bool {
	return s.State() == SessionActive
}

// Activate transitions Connected -> Active. It returns false when the
// session already joined or is closed; callers drop the frame in that case.
func (s *Session) Activate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionConnected {
		return false
	}
	s.state = SessionActive
	return true
}

// Close transitions to Closed and reports the previous state along with
// whether this call performed the transition. Only the first caller sees
// first=true; duplicate disconnect signals no-op.
func (s *Session) Close() (prev SessionState, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionClosed {
		return SessionClosed, false
	}
	prev = s.state
	s.state = SessionClosed
	return prev, true
}
