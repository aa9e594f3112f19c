package model

import "time"

// DefaultConsoleLines bounds the console history.
const DefaultConsoleLines = 200

// ConsoleModel keeps the most recent console lines shown in the panel.
// No synchronization needed: appends and reads occur on the UI thread tick.
type ConsoleModel struct {
	max   int
	lines []string
	dirty bool
}

func NewConsoleModel(max int) *ConsoleModel {
	if max <= 0 {
		max = DefaultConsoleLines
	}
	return &ConsoleModel{max: max}
}

// Append adds a timestamped line, dropping the oldest past the bound.
func (m *ConsoleModel) Append(now time.Time, line string) {
	if m == nil {
		return
	}
	m.lines = append(m.lines, now.Format("15:04:05")+" "+line)
	if over := len(m.lines) - m.max; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
	m.dirty = true
}

// Lines returns a copy of the history, oldest first.
func (m *ConsoleModel) Lines() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.lines...)
}

// TakeDirty reports whether lines were appended since the last call.
func (m *ConsoleModel) TakeDirty() bool {
	if m == nil {
		return false
	}
	d := m.dirty
	m.dirty = false
	return d
}
