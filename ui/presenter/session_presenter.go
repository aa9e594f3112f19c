package presenter

import (
	"time"

	"github.com/soocke/poker-pixel-bot/ui/model"
)

// RunningSource reports whether a detection worker is live.
type RunningSource interface{ Running() bool }

// SessionView displays formatted session and total durations plus the
// session's action count.
type SessionView interface {
	SetSession(v model.SessionValues)
}

// SessionPresenter formats session values from the model to the view.
type SessionPresenter struct {
	sess    *model.SessionModel
	running RunningSource
	view    SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, running RunningSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, running: running, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.running == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.running.Running(), now)
	p.view.SetSession(p.sess.Values())
}
