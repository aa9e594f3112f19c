package decision

import "github.com/soocke/poker-pixel-bot/domain/card"

// Status enumerates the table phases derived from the status indicators.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusBetting
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusBetting:
		return "betting"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Label is the operator-facing phase text.
func (s Status) Label() string {
	switch s {
	case StatusProcessing:
		return "Processing."
	case StatusBetting:
		return "Betting."
	case StatusPaused:
		return "Pause."
	default:
		return "Idle."
	}
}

// Action is a lowercase token understood by the actuator.
type Action string

const (
	ActionNone  Action = ""
	ActionCall  Action = "call"
	ActionFold  Action = "fold"
	ActionStart Action = "start"
)

func (a Action) String() string { return string(a) }

// Valid reports whether a is one of the actuator tokens.
func (a Action) Valid() bool {
	switch a {
	case ActionCall, ActionFold, ActionStart:
		return true
	}
	return false
}

// Observation is one cycle's recognition result as seen by the engine. It is
// passed by value; sets are not retained after Step returns.
type Observation struct {
	Start bool
	Pause bool
	Hand  [2]card.Set // left, right
	Flop  [3]card.Set // Flop A, B, C
}

// StatusOf derives the phase from the indicator flags. Start wins over Pause.
func StatusOf(start, pause bool) Status {
	switch {
	case start:
		return StatusBetting
	case pause:
		return StatusPaused
	default:
		return StatusProcessing
	}
}

// Listener is called on each status transition.
type Listener func(prev, next Status)
