package model

import (
	"time"
)

// SessionModel tracks the current session duration, the accumulated connected
// time and the number of actions dispatched in the current session.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active              bool
	sessionStart        time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	actions             int
}

// SessionValues is what the session stats view displays.
type SessionValues struct {
	Session time.Duration
	Total   time.Duration
	Actions int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current worker state and timestamp.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(running bool, now time.Time) {
	if m == nil {
		return
	}
	if running {
		if !m.active { // transition off -> on
			m.active = true
			m.sessionStart = now
			m.lastSessionDuration = 0
			m.actions = 0
		}
		m.lastSessionDuration = now.Sub(m.sessionStart)
	} else if m.active { // transition on -> off
		m.lastSessionDuration = now.Sub(m.sessionStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// SetActions records the running session's dispatch count. Ignored while
// no session is active so a late snapshot cannot revive the last count.
func (m *SessionModel) SetActions(n int) {
	if m == nil || !m.active {
		return
	}
	m.actions = n
}

// Values returns the current session duration, the total accumulated
// duration and the session's action count. The total includes the ongoing
// session when active.
func (m *SessionModel) Values() SessionValues {
	if m == nil {
		return SessionValues{}
	}
	v := SessionValues{Session: m.lastSessionDuration, Total: m.accumulated, Actions: m.actions}
	if m.active {
		v.Total += v.Session
	}
	return v
}
