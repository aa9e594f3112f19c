package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/config"
	"github.com/soocke/poker-pixel-bot/debug"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/session"
	"github.com/soocke/poker-pixel-bot/pipeline"
	"github.com/soocke/poker-pixel-bot/ui/model"
	"github.com/soocke/poker-pixel-bot/ui/presenter"
	"github.com/soocke/poker-pixel-bot/ui/view"
)

// AppContainer assembles models, the session controller, presenters and the
// root view.
type AppContainer struct {
	Config     *config.Config
	CfgPath    string
	Logger     *slog.Logger
	Capturer   *capture.ScreenCapturer
	Controller *session.Controller
	Pipeline   *pipeline.Pipeline // nil while the assets fail to load
	LoadErr    error

	Connection *model.ConnectionModel
	Session    *model.SessionModel
	Console    *model.ConsoleModel
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	ConnectionPresenter *presenter.ConnectionPresenter
	SessionPresenter    *presenter.SessionPresenter
	SnapshotPresenter   *presenter.SnapshotPresenter
	ConsolePresenter    *presenter.ConsolePresenter
	Loop                *presenter.Loop

	unsubscribe func()
}

// BuildContainer constructs all components. Side-effects limited to asset
// loading; an asset failure is kept in LoadErr and reported on connect.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Connection = &model.ConnectionModel{}
	c.Session = model.NewSessionModel()
	c.Console = model.NewConsoleModel(model.DefaultConsoleLines)
	c.Capturer = capture.NewScreenCapturer(logger)
	c.Controller = session.NewController(c.buildDeps(cfg))
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	// UI built by the app wrapper once the port list is known.
	c.UI = c.RootView
	return c
}

// buildDeps loads the pipeline for cfg. When that fails, the returned deps
// dial the load error so Connect reports it instead of starting blind.
func (c *AppContainer) buildDeps(cfg *config.Config) session.Deps {
	p, err := pipeline.Build(cfg, c.Capturer, c.Logger)
	c.Pipeline, c.LoadErr = p, err
	if err != nil {
		c.Logger.Error("pipeline unavailable", "asset_dir", cfg.AssetDir, "error", err)
		return session.Deps{
			Capturer: c.Capturer,
			Dial:     func(string) (dispatch.Dispatcher, error) { return nil, fmt.Errorf("templates: %w", err) },
			Logger:   c.Logger,
		}
	}
	return p.Deps
}

// Reconfigure rebuilds the pipeline after a config change. Only valid while
// no session runs; the config panel is locked otherwise.
func (c *AppContainer) Reconfigure(cfg *config.Config) error {
	if err := c.Controller.SetDeps(c.buildDeps(cfg)); err != nil {
		return err
	}
	return c.LoadErr
}

// WirePresenters connects models, controller and view. Call after the view
// is built.
func (c *AppContainer) WirePresenters(ctx context.Context, schedule func()) {
	snaps, unsub := c.Controller.Publisher().Subscribe()
	c.unsubscribe = unsub
	c.ConnectionPresenter = presenter.NewConnectionPresenter(ctx, c.Connection, c.Controller, c.UI, c.Console, dispatch.PortNames, c.Logger)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Controller, c.UI)
	c.SnapshotPresenter = presenter.NewSnapshotPresenter(snaps, c.UI, c.Console, c.Session)
	c.ConsolePresenter = presenter.NewConsolePresenter(c.Console, c.UI)
	c.Loop = presenter.NewLoop(c.ConnectionPresenter, c.SessionPresenter, c.SnapshotPresenter, c.ConsolePresenter, schedule)
}

// Shutdown stops any live session and waits briefly for it to exit.
func (c *AppContainer) Shutdown(timeout time.Duration) {
	if c.Controller.Stop() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.Controller.Wait(ctx); err != nil {
			c.Logger.Warn("session did not stop cleanly", "error", err)
		}
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Regions returns the layout in use, falling back to the default table when
// the pipeline is unavailable.
func (c *AppContainer) Regions() *region.Library {
	if c.Pipeline != nil {
		return c.Pipeline.Regions
	}
	return region.Offset(c.Config.OffsetX, c.Config.OffsetY)
}

// DiagnosticsProbe reports capture counters and cycle timing for the debug
// loggers.
func DiagnosticsProbe(capt *capture.ScreenCapturer, ctrl *session.Controller) debug.Probe {
	return func() []slog.Attr {
		cs := capt.Stats()
		ss := ctrl.Stats()
		return []slog.Attr{
			slog.Uint64("captures", cs.Captures),
			slog.Uint64("capture_failures", cs.Failures),
			slog.Int64("capture_avg_us", cs.AvgCapture.Microseconds()),
			slog.Uint64("cycles", ss.Cycles),
			slog.Uint64("dispatches", ss.Dispatches),
			slog.Int64("cycle_mean_ms", ss.MeanCycle.Milliseconds()),
		}
	}
}

func regionNames(lib *region.Library, role region.Role) []string {
	var names []string
	for _, r := range lib.ByRole(role) {
		names = append(names, r.Name)
	}
	return names
}
