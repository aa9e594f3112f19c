package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/config"
	"github.com/soocke/poker-pixel-bot/debug"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/ui/feed"
	"github.com/soocke/poker-pixel-bot/ui/theme"
	"github.com/soocke/poker-pixel-bot/ui/view"
)

const (
	tick = 100 * time.Millisecond
)

type app struct {
	c       *AppContainer
	width   int
	height  int
	afterID string
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewApp prepares the control panel window and its container.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	a := &app{width: width, height: height}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.c = BuildContainer(cfg, cfgPath, logger)

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

// Start builds the UI, kicks off the update loop and blocks in the Tk event
// loop until the window closes.
func (a *app) Start() {
	c := a.c
	theme.SetDark(c.Config.DarkMode)

	ports, err := dispatch.PortNames()
	if err != nil {
		c.Logger.Warn("port enumeration failed", "error", err)
	}
	regions := c.Regions()
	c.RootView.Build(ports, regionNames(regions, region.RoleBoard), regionNames(regions, region.RoleHand), view.Handlers{
		OnConnect:    func(port string) { c.ConnectionPresenter.Connect(port) },
		OnDisconnect: func() { c.ConnectionPresenter.Disconnect() },
		OnRefresh:    func() { c.ConnectionPresenter.RefreshPorts() },
		OnScreenshot: a.screenshot,
		OnExit:       a.exitHandler,
		OnApply:      a.applyConfig,
	})
	c.WirePresenters(a.ctx, a.scheduleUpdate)

	now := time.Now()
	if c.LoadErr != nil {
		c.Console.Append(now, fmt.Sprintf("Template assets not usable: %v", c.LoadErr))
	} else {
		c.Console.Append(now, fmt.Sprintf("Templates loaded from %s", c.Config.AssetDir))
	}
	if len(ports) == 0 {
		c.Console.Append(now, "No serial ports found")
	}

	if c.Config.FeedAddr != "" {
		hub := feed.NewHub(c.Controller.Publisher(), c.Logger)
		go func() {
			if err := hub.ListenAndServe(a.ctx, c.Config.FeedAddr); err != nil {
				c.Logger.Error("feed stopped", "error", err)
			}
		}()
	}
	if c.Config.Debug {
		probe := DiagnosticsProbe(c.Capturer, c.Controller)
		debug.StartGoroutineLogger(a.ctx, 5*time.Second, c.Logger, probe)
		debug.StartMemLogger(a.ctx, 5*time.Second, c.Logger, probe)
	}

	// Kick off update loop.
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) update() {
	// Guard against widget access after teardown.
	defer func() {
		if r := recover(); r != nil {
			a.c.Logger.Error("ui tick panic", "error", r)
			a.scheduleUpdate()
		}
	}()
	a.c.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	if a.ctx.Err() != nil {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.cancel()
	a.c.Shutdown(2 * time.Second)
	Destroy(App)
}

func (a *app) screenshot() {
	path, err := capture.SaveScreenshot(a.c.Config.ScreenshotDir, time.Now())
	if err != nil {
		a.c.Logger.Error("screenshot failed", "error", err)
		a.c.Console.Append(time.Now(), fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	a.c.Logger.Info("screenshot saved", "path", path)
	a.c.Console.Append(time.Now(), "Screenshot saved to "+path)
}

// applyConfig runs after the config panel stores a valid change.
func (a *app) applyConfig(cfg *config.Config) {
	theme.SetDark(cfg.DarkMode)
	if err := a.c.Reconfigure(cfg); err != nil {
		a.c.Console.Append(time.Now(), fmt.Sprintf("Config applied, pipeline unavailable: %v", err))
		return
	}
	a.c.Console.Append(time.Now(), "Config applied")
}
