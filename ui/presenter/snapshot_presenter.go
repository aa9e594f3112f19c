package presenter

import (
	"fmt"
	"time"

	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/session"
)

// SnapshotView shows one published cycle.
type SnapshotView interface {
	SetRegion(name, text string)
	SetStatusLabel(text string)
	SetLastAction(text string)
}

// ActionCounter receives the session's dispatch count.
type ActionCounter interface{ SetActions(n int) }

// SnapshotPresenter drains published snapshots on the UI tick and reflects
// only what changed.
type SnapshotPresenter struct {
	snaps   <-chan session.Snapshot
	view    SnapshotView
	console Console
	counter ActionCounter

	shown      map[string]string
	label      string
	dispatches int
	lastErr    string
	session    string
}

func NewSnapshotPresenter(snaps <-chan session.Snapshot, view SnapshotView, console Console, counter ActionCounter) *SnapshotPresenter {
	return &SnapshotPresenter{snaps: snaps, view: view, console: console, counter: counter, shown: make(map[string]string)}
}

// Tick applies the latest pending snapshot, if any.
func (p *SnapshotPresenter) Tick(now time.Time) {
	if p == nil || p.snaps == nil || p.view == nil {
		return
	}
	select {
	case s, ok := <-p.snaps:
		if ok {
			p.Apply(now, s)
		}
	default:
	}
}

// Apply reflects s in the view and logs status changes, dispatches and
// dispatch errors to the console.
func (p *SnapshotPresenter) Apply(now time.Time, s session.Snapshot) {
	if p == nil || p.view == nil {
		return
	}
	if s.Session != p.session {
		p.session = s.Session
		p.dispatches = 0
		p.lastErr = ""
	}
	for name, text := range s.Regions() {
		if p.shown[name] != text {
			p.shown[name] = text
			p.view.SetRegion(name, text)
		}
	}
	if label := s.Label(); label != p.label {
		p.label = label
		p.view.SetStatusLabel(label)
		p.log(now, "Status "+label)
	}
	if s.Dispatches > p.dispatches {
		n := s.Dispatches - p.dispatches
		p.dispatches = s.Dispatches
		p.view.SetLastAction(s.LastAction.String())
		if n == 1 {
			p.log(now, fmt.Sprintf("Sent %s (hand %s %s)", s.LastAction, s.Text(region.HandA), s.Text(region.HandB)))
		} else {
			p.log(now, fmt.Sprintf("Sent %d actions, last %s", n, s.LastAction))
		}
	}
	if p.counter != nil {
		p.counter.SetActions(s.Dispatches)
	}
	if s.DispatchErr != p.lastErr {
		p.lastErr = s.DispatchErr
		if s.DispatchErr != "" {
			p.log(now, "Dispatch failed: "+s.DispatchErr)
		}
	}
	if !s.Running && s.Status == decision.StatusIdle && s.Session != "" {
		p.view.SetLastAction("")
	}
}

func (p *SnapshotPresenter) log(now time.Time, line string) {
	if p.console != nil {
		p.console.Append(now, line)
	}
}
