package world

import (
	"sync"

	"github.com/pkg/errors"
)

// ConnManager tracks every open WebSocket connection on this gateway node.
// It is the source of truth the broadcast router snapshots at delivery time,
// so a connection removed here stops receiving events immediately.
type ConnManager struct {
	mu     sync.RWMutex
	byConn map[string]*Client
}

func NewConnManager() *ConnManager {
	return &ConnManager{byConn: make(map[string]*Client)}
}

// Add registers an open connection.
func (m *ConnManager) Add(c *Client) error {
	if c == nil || c.ConnID == "" {
		return errors.New("nil client or empty conn id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byConn[c.ConnID]; exists {
		return errors.Errorf("conn id %s already tracked", c.ConnID)
	}
	m.byConn[c.ConnID] = c
	return nil
}

// Remove drops the connection from the table and returns it, or nil when it
// was already gone (a disconnect racing an earlier removal).
func (m *ConnManager) Remove(connID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byConn[connID]
	if !ok {
		return nil
	}
	delete(m.byConn, connID)
	return c
}

// Get returns the client for a connection id.
func (m *ConnManager) Get(connID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byConn[connID]
	return c, ok
}

// Snapshot returns all currently tracked clients. This is the audience for
// departure events, where the leaver is already out of the table.
func (m *ConnManager) Snapshot() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.byConn))
	for _, c := range m.byConn {
		out = append(out, c)
	}
	return out
}

// SnapshotExcept returns all tracked clients except the one with connID.
// This is the audience for echo-suppressed broadcasts; it is computed at
// call time, never cached, so closing connections drop out immediately.
func (m *ConnManager) SnapshotExcept(connID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.byConn))
	for id, c := range m.byConn {
		if id == connID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Len returns the number of open connections.
func (m *ConnManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}

// CloseAll closes every tracked connection and empties the table.
func (m *ConnManager) CloseAll() {
	m.mu.Lock()
	conns := make([]*Client, 0, len(m.byConn))
	for _, c := range m.byConn {
		conns = append(conns, c)
	}
	m.byConn = make(map[string]*Client)
	m.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
