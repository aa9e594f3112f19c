package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/quartz"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/vision"
)

const statsLogInterval = 5 * time.Second

// CardSource recognizes a fixed set of card regions.
type CardSource interface {
	Recognize(c capture.Capturer) (map[string]card.Set, error)
}

// StatusSource reads the status indicators.
type StatusSource interface {
	Read(c capture.Capturer) (vision.StatusFlags, error)
}

// Pacing bounds how fast the loop spins.
type Pacing struct {
	MinInterval    time.Duration // minimum time between cycle starts
	FailureBackoff time.Duration // first delay after a failed cycle
	MaxBackoff     time.Duration // cap for the doubling backoff
}

func DefaultPacing() Pacing {
	return Pacing{MinInterval: 50 * time.Millisecond, FailureBackoff: 100 * time.Millisecond, MaxBackoff: 2 * time.Second}
}

// backoffDelay returns the wait after the n-th consecutive failure.
func (p Pacing) backoffDelay(n int) time.Duration {
	if n <= 0 || p.FailureBackoff <= 0 {
		return p.MinInterval
	}
	d := p.FailureBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// LoopConfig wires one detection loop. Nil optional fields get defaults.
type LoopConfig struct {
	ID         string
	Capturer   capture.Capturer
	Board      CardSource
	Hand       CardSource
	Status     StatusSource
	Dispatcher dispatch.Dispatcher
	Engine     *decision.Engine
	Publisher  *Publisher
	Flags      *Flags
	Stats      *CycleStats
	Clock      quartz.Clock
	Pacing     Pacing
	Logger     *slog.Logger
}

// Loop runs detection cycles on one goroutine. It owns every raster and
// result it produces; the outside world sees only published snapshots.
type Loop struct {
	cfg        LoopConfig
	seq        uint64
	lastAction decision.Action
	dispatches int
	lastErr    string
	lastLog    time.Time
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Engine == nil {
		cfg.Engine = decision.NewEngine(cfg.Logger)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = NewPublisher()
	}
	if cfg.Flags == nil {
		cfg.Flags = NewFlags()
	}
	if cfg.Stats == nil {
		cfg.Stats = NewCycleStats()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Pacing == (Pacing{}) {
		cfg.Pacing = DefaultPacing()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{cfg: cfg}
}

func (l *Loop) Flags() *Flags           { return l.cfg.Flags }
func (l *Loop) Engine() *decision.Engine { return l.cfg.Engine }
func (l *Loop) Stats() *CycleStats      { return l.cfg.Stats }

// Cycle runs one full pass: board, hand, status, decision, dispatch,
// publish. A capture error aborts the pass before the engine sees anything.
func (l *Loop) Cycle(ctx context.Context) (Snapshot, error) {
	c := l.cfg
	start := c.Clock.Now()

	board, err := c.Board.Recognize(c.Capturer)
	if err != nil {
		return Snapshot{}, err
	}
	hand, err := c.Hand.Recognize(c.Capturer)
	if err != nil {
		return Snapshot{}, err
	}
	flags, err := c.Status.Read(c.Capturer)
	if err != nil {
		return Snapshot{}, err
	}

	obs := decision.Observation{Start: flags.Start, Pause: flags.Pause}
	for i, name := range region.HandNames {
		obs.Hand[i] = hand[name]
	}
	for i, name := range region.FlopNames {
		obs.Flop[i] = board[name]
	}
	act, ok := c.Engine.Step(obs)

	var sent decision.Action
	if ok {
		switch {
		case c.Flags.StopRequested():
			c.Logger.Info("stop requested, dropping action", "action", act.String())
		case c.Dispatcher == nil:
			c.Logger.Warn("no dispatcher, dropping action", "action", act.String())
		default:
			if err := c.Dispatcher.Send(ctx, act); err != nil {
				l.lastErr = err.Error()
				c.Logger.Error("dispatch failed", "action", act.String(), "error", err)
			} else {
				l.lastErr = ""
			}
			sent = act
			l.lastAction = act
			l.dispatches++
		}
	}

	cards := make(map[string]card.Set, len(board)+len(hand))
	for k, v := range board {
		cards[k] = v
	}
	for k, v := range hand {
		cards[k] = v
	}
	l.seq++
	elapsed := c.Clock.Since(start)
	snap := Snapshot{
		Session:     c.ID,
		Seq:         l.seq,
		At:          c.Clock.Now(),
		Cards:       cards,
		Status:      c.Engine.Status(),
		Start:       flags.Start,
		Pause:       flags.Pause,
		Action:      sent,
		LastAction:  l.lastAction,
		Dispatches:  l.dispatches,
		DispatchErr: l.lastErr,
		CycleTime:   elapsed,
		Running:     true,
	}
	c.Stats.Observe(elapsed, sent != decision.ActionNone)
	c.Publisher.Publish(snap)
	if sent != decision.ActionNone {
		c.Logger.Info("cycle decided", "status", snap.Status.String(), "action", sent.String(),
			"hand", []string{snap.Text(region.HandA), snap.Text(region.HandB)},
			"flop", []string{snap.Text(region.FlopA), snap.Text(region.FlopB), snap.Text(region.FlopC)})
	}
	return snap, nil
}

// Run repeats Cycle until a stop is requested or ctx ends. Both are checked
// only between cycles.
func (l *Loop) Run(ctx context.Context) error {
	c := l.cfg
	failures := 0
	l.lastLog = c.Clock.Now()
	c.Logger.Info("detection loop started")
	defer c.Logger.Info("detection loop stopped", "cycles", l.seq)
	for {
		if c.Flags.StopRequested() || ctx.Err() != nil {
			return nil
		}
		started := c.Clock.Now()
		_, err := l.Cycle(ctx)
		var delay time.Duration
		if err != nil {
			failures++
			c.Stats.Fail()
			delay = c.Pacing.backoffDelay(failures)
			c.Logger.Warn("cycle skipped", "error", err, "consecutive", failures, "backoff", delay)
		} else {
			failures = 0
			delay = c.Pacing.MinInterval - c.Clock.Since(started)
		}
		l.maybeLogStats()
		if delay > 0 && !l.sleep(ctx, delay) {
			return nil
		}
	}
}

// sleep waits for d; false if woken by a stop request or ctx.
func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	t := l.cfg.Clock.NewTimer(d, "loop", "pace")
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-l.cfg.Flags.Wake():
		return false
	case <-ctx.Done():
		return false
	}
}

func (l *Loop) maybeLogStats() {
	now := l.cfg.Clock.Now()
	if now.Sub(l.lastLog) < statsLogInterval {
		return
	}
	l.lastLog = now
	s := l.cfg.Stats.Summary()
	l.cfg.Logger.Info("loop stats",
		"cycles", s.Cycles,
		"failures", s.Failures,
		"dispatches", s.Dispatches,
		"mean_ms", s.MeanCycle.Milliseconds(),
		"std_ms", s.StdCycle.Milliseconds())
}
