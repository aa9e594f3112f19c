// Package pipeline assembles the recognition pipeline (regions, templates,
// matcher, recognizers, status reader, actuator dial) from configuration.
// Both the control panel and the headless runner build sessions through it.
package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/coder/quartz"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/config"
	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/session"
	"github.com/soocke/poker-pixel-bot/domain/templates"
	"github.com/soocke/poker-pixel-bot/domain/vision"
)

// Pipeline is everything a session needs, built once per configuration.
type Pipeline struct {
	Regions *region.Library
	Library *templates.Library
	Matcher vision.Matcher
	Deps    session.Deps
}

// Build loads templates from cfg.AssetDir and wires the pipeline around capt.
func Build(cfg *config.Config, capt capture.Capturer, logger *slog.Logger) (*Pipeline, error) {
	return BuildFS(cfg, os.DirFS(cfg.AssetDir), capt, logger)
}

// BuildFS is Build with an explicit asset tree.
func BuildFS(cfg *config.Config, assets fs.FS, capt capture.Capturer, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := *cfg // sessions keep the values they were built with
	regions := region.Offset(c.OffsetX, c.OffsetY)
	lib, err := templates.Load(assets, regions, logger)
	if err != nil {
		return nil, err
	}
	m := vision.NewDefaultMatcher(MatchOptions(&c), logger)
	status, err := vision.NewStatusReader(vision.NewStatusDetector(c.StatusThreshold), regions, lib)
	if err != nil {
		return nil, err
	}
	keys, err := KeyMap(c.Keys)
	if err != nil {
		return nil, err
	}
	dial := func(port string) (dispatch.Dispatcher, error) {
		if port == "" {
			port = c.Port
		}
		return dispatch.Open(dispatch.Options{
			Kind:     dispatch.Kind(c.Actuator),
			Port:     port,
			BaudRate: c.BaudRate,
			Keys:     keys,
		}, logger)
	}
	return &Pipeline{
		Regions: regions,
		Library: lib,
		Matcher: m,
		Deps: session.Deps{
			Capturer: capt,
			Board:    vision.NewBoardRecognizer(m, regions, lib, logger),
			Hand:     vision.NewHandRecognizer(m, regions, lib, logger),
			Status:   status,
			Dial:     dial,
			Clock:    quartz.NewReal(),
			Pacing: session.Pacing{
				MinInterval:    c.MinCycleInterval(),
				FailureBackoff: c.FailureBackoff(),
				MaxBackoff:     c.MaxBackoff(),
			},
			Logger: logger,
		},
	}, nil
}

// MatchOptions derives the card matcher settings from cfg.
func MatchOptions(cfg *config.Config) vision.MatchOptions {
	return vision.MatchOptions{
		Scales:    vision.LinearScales(cfg.MinScale, cfg.MaxScale, cfg.ScaleSteps),
		Threshold: cfg.CardThreshold,
		Workers:   cfg.Workers,
	}
}

// KeyMap converts configured action keys ("call" -> "F5") for the keyboard
// actuator, rejecting unknown actions and keys. Unset actions keep their
// defaults.
func KeyMap(keys map[string]string) (map[decision.Action]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make(map[decision.Action]string, len(keys))
	for name, key := range keys {
		a := decision.Action(strings.ToLower(strings.TrimSpace(name)))
		if !a.Valid() {
			return nil, fmt.Errorf("config keys: %w: %q", dispatch.ErrUnknownAction, name)
		}
		if _, ok := dispatch.ParseVK(key); !ok {
			return nil, fmt.Errorf("config keys: %w", dispatch.ErrUnknownKey(key))
		}
		out[a] = key
	}
	return out, nil
}
