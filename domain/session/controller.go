package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
)

// ErrSessionActive is returned by Start while a worker is live and no stop
// has been requested.
var ErrSessionActive = errors.New("session: already running")

// DialFunc opens the actuator for a session.
type DialFunc func(port string) (dispatch.Dispatcher, error)

// Deps are shared by every session a controller starts.
type Deps struct {
	Capturer  capture.Capturer
	Board     CardSource
	Hand      CardSource
	Status    StatusSource
	Dial      DialFunc
	Publisher *Publisher
	Clock     quartz.Clock
	Pacing    Pacing
	Logger    *slog.Logger
}

// Controller is the operator-facing side: it starts and stops the single
// detection worker and reports how it ended.
type Controller struct {
	mu   sync.Mutex
	deps Deps
	cur  *worker
}

type worker struct {
	id    string
	port  string
	flags *Flags
	loop  *Loop
	done  chan struct{}

	mu  sync.Mutex
	err error
}

func (w *worker) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

func (w *worker) getErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func NewController(deps Deps) *Controller {
	if deps.Publisher == nil {
		deps.Publisher = NewPublisher()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{deps: deps}
}

func (c *Controller) Publisher() *Publisher { return c.deps.Publisher }

// SetDeps swaps the pipeline used by the next session. The publisher is
// kept so existing subscribers stay attached. It fails with
// ErrSessionActive while a worker is live.
func (c *Controller) SetDeps(deps Deps) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.cur; w != nil {
		select {
		case <-w.done:
		default:
			return ErrSessionActive
		}
	}
	deps.Publisher = c.deps.Publisher
	if deps.Logger == nil {
		deps.Logger = c.deps.Logger
	}
	c.deps = deps
	return nil
}

// Start opens the actuator on port and launches a worker. If the previous
// worker was asked to stop but has not exited yet, Start waits for it.
func (c *Controller) Start(ctx context.Context, port string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.cur; w != nil {
		select {
		case <-w.done:
		default:
			if !w.flags.StopRequested() {
				return "", ErrSessionActive
			}
			select {
			case <-w.done:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if c.deps.Dial == nil {
		return "", fmt.Errorf("session: no actuator configured")
	}
	disp, err := c.deps.Dial(port)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	logger := c.deps.Logger.With("session", id)
	flags := NewFlags()
	engine := decision.NewEngine(logger)
	engine.AddListener(func(prev, next decision.Status) {
		logger.Info("status changed", "from", prev.Label(), "to", next.Label())
	})
	loop := NewLoop(LoopConfig{
		ID:         id,
		Capturer:   c.deps.Capturer,
		Board:      c.deps.Board,
		Hand:       c.deps.Hand,
		Status:     c.deps.Status,
		Dispatcher: disp,
		Engine:     engine,
		Publisher:  c.deps.Publisher,
		Flags:      flags,
		Clock:      c.deps.Clock,
		Pacing:     c.deps.Pacing,
		Logger:     logger,
	})
	w := &worker{id: id, port: port, flags: flags, loop: loop, done: make(chan struct{})}
	c.cur = w
	logger.Info("session started", "port", port)
	go c.run(ctx, w, disp, logger)
	return id, nil
}

func (c *Controller) run(ctx context.Context, w *worker, disp dispatch.Dispatcher, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session panic", "error", r, "stack", string(debug.Stack()))
			w.setErr(fmt.Errorf("session: worker panic: %v", r))
		}
		if err := disp.Close(); err != nil {
			logger.Warn("actuator close failed", "error", err)
		}
		w.loop.Engine().Reset()
		last, _ := c.deps.Publisher.Latest()
		last.Session = w.id
		last.Status = decision.StatusIdle
		last.Running = false
		last.Action = decision.ActionNone
		c.deps.Publisher.Publish(last)
		logger.Info("session ended", "error", w.getErr())
		close(w.done)
	}()
	if err := w.loop.Run(ctx); err != nil {
		w.setErr(err)
	}
}

// Stop asks the worker to exit after its current cycle. It reports whether
// a live worker was signalled.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.cur
	if w == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
	}
	w.flags.RequestStop()
	return true
}

// Wait blocks until the current worker exits or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	done := c.Done()
	select {
	case <-done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the current worker exits. With no worker it is
// already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.cur.done
}

// Err reports why the last worker exited; nil for a requested stop.
func (c *Controller) Err() error {
	c.mu.Lock()
	w := c.cur
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.getErr()
}

// Running reports whether a worker is live.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return false
	}
	select {
	case <-c.cur.done:
		return false
	default:
		return true
	}
}

// Session returns the id and port of the current or last worker.
func (c *Controller) Session() (id, port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return "", ""
	}
	return c.cur.id, c.cur.port
}

// Stats summarises the current or last worker.
func (c *Controller) Stats() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return Summary{}
	}
	return c.cur.loop.Stats().Summary()
}
