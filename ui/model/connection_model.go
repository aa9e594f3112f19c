package model

import (
	"sync"
	"sync/atomic"
)

// ConnectionModel tracks whether a session is connected and to which port.
// The zero value is disconnected and usable. Concurrency-safe because UI
// callbacks and presenter ticks may race.
type ConnectionModel struct {
	connected atomic.Bool

	mu   sync.Mutex
	port string
}

// Connected reports whether a session is currently connected.
func (m *ConnectionModel) Connected() bool {
	if m == nil {
		return false
	}
	return m.connected.Load()
}

// Port returns the port of the current or last connection.
func (m *ConnectionModel) Port() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.port
}

// SetConnected records a connect (with port) or a disconnect. An empty port
// on disconnect keeps the last one for display.
func (m *ConnectionModel) SetConnected(b bool, port string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	if port != "" {
		m.port = port
	}
	m.mu.Unlock()
	m.connected.Store(b)
}
