package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// DryRun logs tokens instead of sending them and remembers what it saw.
type DryRun struct {
	mu     sync.Mutex
	logger *slog.Logger
	sent   []decision.Action
	closed bool
}

func NewDryRun(logger *slog.Logger) *DryRun { return &DryRun{logger: logger} }

func (d *DryRun) Send(ctx context.Context, a decision.Action) error {
	if err := checkAction(a, "dry-run"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &DispatchError{Action: a, Target: "dry-run", Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &DispatchError{Action: a, Target: "dry-run", Err: ErrClosed}
	}
	d.sent = append(d.sent, a)
	if d.logger != nil {
		d.logger.Info("command sent (dry run)", "action", a.String())
	}
	return nil
}

// Sent returns a copy of every accepted token in order.
func (d *DryRun) Sent() []decision.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]decision.Action(nil), d.sent...)
}

func (d *DryRun) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
