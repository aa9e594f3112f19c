package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Conn     *ConnectionPresenter
	Session  *SessionPresenter
	Snap     *SnapshotPresenter
	Console  *ConsolePresenter
	Schedule func()
	Now      func() time.Time
}

func NewLoop(conn *ConnectionPresenter, sess *SessionPresenter, snap *SnapshotPresenter, console *ConsolePresenter, schedule func()) *Loop {
	return &Loop{Conn: conn, Session: sess, Snap: snap, Console: console, Schedule: schedule, Now: time.Now}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	// Session first so a new session resets its counters before the snapshot lands.
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Snap != nil {
		l.Snap.Tick(now)
	}
	if l.Conn != nil {
		l.Conn.Tick(now)
	}
	if l.Console != nil {
		l.Console.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
