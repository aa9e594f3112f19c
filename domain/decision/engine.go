package decision

import (
	"log/slog"
	"sync"

	"github.com/soocke/poker-pixel-bot/domain/card"
)

// Engine turns one observation per cycle into at most one action per entry
// into Betting or Paused. It is driven by a single worker; Status and
// CommandSent may be read from other goroutines.
type Engine struct {
	mu          sync.Mutex
	status      Status
	commandSent bool
	logger      *slog.Logger
	listeners   []Listener
}

// NewEngine returns an engine in StatusIdle with the guard clear.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{status: StatusIdle, logger: logger}
}

// AddListener registers l for status transitions. Listeners run on the
// worker goroutine and must not block.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Step consumes one observation. ok is false when nothing is to be sent.
func (e *Engine) Step(obs Observation) (Action, bool) {
	next := StatusOf(obs.Start, obs.Pause)
	e.mu.Lock()
	prev := e.status
	if prev != next {
		e.status = next
		e.commandSent = false
	}
	listeners := e.listeners
	var act Action
	switch next {
	case StatusProcessing:
		e.commandSent = false
	case StatusPaused:
		if !e.commandSent {
			act = ActionStart
		}
	case StatusBetting:
		if !e.commandSent {
			hand, flop, confident := resolve(obs)
			if !confident {
				if e.logger != nil {
					e.logger.Debug("low confidence cycle, deferring", "hand", codes(hand[:]), "flop", codes(flop[:]))
				}
				break
			}
			act = Decide(hand, flop)
		}
	}
	if act != ActionNone {
		e.commandSent = true
	}
	e.mu.Unlock()

	if prev != next {
		if e.logger != nil {
			e.logger.Debug("status transition", "from", prev.String(), "to", next.String())
		}
		for _, l := range listeners {
			l(prev, next)
		}
	}
	return act, act != ActionNone
}

// Status returns the phase of the last step.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// CommandSent reports whether the current phase entry already produced an
// action.
func (e *Engine) CommandSent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commandSent
}

// Reset returns the engine to StatusIdle with the guard clear.
func (e *Engine) Reset() {
	e.mu.Lock()
	prev := e.status
	e.status = StatusIdle
	e.commandSent = false
	listeners := e.listeners
	e.mu.Unlock()
	if prev != StatusIdle {
		for _, l := range listeners {
			l(prev, StatusIdle)
		}
	}
}

// resolve reduces each slot to one code. An empty slot resolves to the
// placeholder; a slot with several codes makes the reading low confidence.
func resolve(obs Observation) (hand [2]card.Code, flop [3]card.Code, confident bool) {
	confident = true
	for i, s := range obs.Hand {
		hand[i], _ = s.Resolve()
		if s.Ambiguous() {
			confident = false
		}
	}
	for i, s := range obs.Flop {
		flop[i], _ = s.Resolve()
		if s.Ambiguous() {
			confident = false
		}
	}
	return hand, flop, confident
}

func codes(cs []card.Code) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
