package view

import (
	"fmt"
	"time"

	"github.com/soocke/poker-pixel-bot/ui/model"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows session and total connected durations and the
// session's action count.
type SessionStats interface {
	SetSession(v model.SessionValues)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	actionsLbl *LabelWidget
}

// NewSessionStats creates the labels in a grid layout starting at
// (row, startCol). If parent is nil, labels are positioned relative to the
// App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), actionsLbl: Label(Width(12))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.actionsLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetSession(model.SessionValues{})
	return s
}

// SetSession updates all three labels.
func (s *sessionStats) SetSession(v model.SessionValues) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(v.Session)))
	s.totalLbl.Configure(Txt("Total: " + clock(v.Total)))
	s.actionsLbl.Configure(Txt(fmt.Sprintf("Actions: %d", v.Actions)))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	return fmt.Sprintf("%02d:%02d", min, sec)
}
