package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/soocke/poker-pixel-bot/app"
	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/config"
	"github.com/soocke/poker-pixel-bot/debug"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/session"
	"github.com/soocke/poker-pixel-bot/domain/templates"
	"github.com/soocke/poker-pixel-bot/pipeline"
	"github.com/soocke/poker-pixel-bot/ui/feed"
)

var cli struct {
	Config    string `help:"path to the JSON config file" default:"config.json" type:"path"`
	Debug     bool   `help:"enable debug logging and runtime diagnostics"`
	LogFormat string `help:"log format override (json|console)"`

	Panel      PanelCmd      `cmd:"" default:"1" help:"open the control panel (default)"`
	Run        RunCmd        `cmd:"" help:"run a headless session until interrupted"`
	Ports      PortsCmd      `cmd:"" help:"list serial ports"`
	Screenshot ScreenshotCmd `cmd:"" help:"save a full-screen screenshot"`
	Verify     VerifyCmd     `cmd:"" help:"load the template assets and report problems"`
}

type PanelCmd struct {
	Width  int `help:"window width" default:"760"`
	Height int `help:"window height" default:"820"`
}

type RunCmd struct {
	Port   string `help:"serial port of the actuator (overrides config)"`
	DryRun bool   `help:"log actions instead of sending them"`
	Feed   string `help:"serve the snapshot websocket feed on this address (e.g. :8765)"`
}

type PortsCmd struct{}

type ScreenshotCmd struct {
	Dir string `help:"folder to save into (overrides config)" type:"path"`
}

type VerifyCmd struct{}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("poker-pixel-bot"),
		kong.Description("Screen-reading poker bot with a serial actuator"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v (using defaults)\n", cli.Config, err)
	}
	if cli.Debug {
		cfg.Debug = true
	}
	if cli.LogFormat != "" {
		cfg.LogFormat = cli.LogFormat
	}
	logger := NewLogger(levelFor(cfg.Debug), cfg.LogFormat)

	switch ctx.Command() {
	case "panel":
		err = cli.Panel.Run(cfg, logger)
	case "run":
		err = cli.Run.Run(cfg, logger)
	case "ports":
		err = cli.Ports.Run()
	case "screenshot":
		err = cli.Screenshot.Run(cfg, logger)
	case "verify":
		err = cli.Verify.Run(cfg, logger)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	ctx.FatalIfErrorf(err)
}

func (cmd *PanelCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	application, err := app.NewApp("Poker Pixel Bot", cmd.Width, cmd.Height, cfg, cli.Config, logger)
	if err != nil {
		return err
	}
	application.Start()
	return nil
}

func (cmd *RunCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	if cmd.DryRun {
		cfg.Actuator = string(dispatch.KindDryRun)
	}
	if cmd.Feed != "" {
		cfg.FeedAddr = cmd.Feed
	}
	port := cfg.Port
	if cmd.Port != "" {
		port = cmd.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capt := capture.NewScreenCapturer(logger)
	p, err := pipeline.Build(cfg, capt, logger)
	if err != nil {
		return err
	}
	ctrl := session.NewController(p.Deps)
	startDiagnostics(ctx, cfg, logger, capt, ctrl)
	if cfg.FeedAddr != "" {
		hub := feed.NewHub(ctrl.Publisher(), logger)
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.FeedAddr); err != nil {
				logger.Error("feed stopped", "error", err)
			}
		}()
	}

	if _, err := ctrl.Start(ctx, port); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		logger.Info("interrupt received, stopping session")
		ctrl.Stop()
	case <-ctrl.Done():
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = ctrl.Wait(waitCtx)
	s := ctrl.Stats()
	logger.Info("session summary", "cycles", s.Cycles, "failures", s.Failures, "dispatches", s.Dispatches,
		"mean_ms", s.MeanCycle.Milliseconds())
	return err
}

func (cmd *PortsCmd) Run() error {
	ports, err := dispatch.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p.String())
	}
	return nil
}

func (cmd *ScreenshotCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	dir := cfg.ScreenshotDir
	if cmd.Dir != "" {
		dir = cmd.Dir
	}
	path, err := capture.SaveScreenshot(dir, time.Now())
	if err != nil {
		return err
	}
	logger.Info("screenshot saved", "path", path)
	fmt.Println(path)
	return nil
}

func (cmd *VerifyCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	p, err := pipeline.Build(cfg, nil, logger)
	if err != nil {
		var ae *templates.AssetLoadError
		if errors.As(err, &ae) {
			for _, m := range ae.Missing {
				fmt.Fprintln(os.Stderr, "missing or unreadable:", m)
			}
		}
		return err
	}
	fmt.Printf("assets ok: %d board templates, %d hand sides, %d regions\n",
		len(p.Library.Board()), len(p.Regions.Sides()), len(p.Regions.All()))
	return nil
}

// startDiagnostics runs the debug loggers with capture and cycle probes.
func startDiagnostics(ctx context.Context, cfg *config.Config, logger *slog.Logger, capt *capture.ScreenCapturer, ctrl *session.Controller) {
	if !cfg.Debug {
		return
	}
	probe := app.DiagnosticsProbe(capt, ctrl)
	debug.StartGoroutineLogger(ctx, 5*time.Second, logger, probe)
	debug.StartMemLogger(ctx, 5*time.Second, logger, probe)
}
