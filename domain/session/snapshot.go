package session

import (
	"time"

	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// Snapshot is one cycle's result as published to display collaborators.
// Published values are deep copies; receivers may keep them.
type Snapshot struct {
	Session     string
	Seq         uint64
	At          time.Time
	Cards       map[string]card.Set
	Status      decision.Status
	Start       bool
	Pause       bool
	Action      decision.Action // dispatched this cycle, if any
	LastAction  decision.Action
	Dispatches  int // actions dispatched so far in this session
	DispatchErr string
	CycleTime   time.Duration
	Running     bool
}

// Label is the phase text for the status display.
func (s Snapshot) Label() string { return s.Status.Label() }

// Text renders one region for display, "--" when nothing matched.
func (s Snapshot) Text(region string) string {
	set, ok := s.Cards[region]
	if !ok {
		return string(card.Placeholder)
	}
	return set.String()
}

// Regions renders every region for display.
func (s Snapshot) Regions() map[string]string {
	out := make(map[string]string, len(s.Cards))
	for name, set := range s.Cards {
		out[name] = set.String()
	}
	return out
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s.Cards != nil {
		cards := make(map[string]card.Set, len(s.Cards))
		for k, v := range s.Cards {
			cards[k] = v.Clone()
		}
		s.Cards = cards
	}
	return s
}
