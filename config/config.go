package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config holds runtime configuration for recognition, the actuator link and
// app behavior. Fields may be loaded from a JSON file and overridden by
// command-line flags.
type Config struct {
	Debug         bool   `json:"debug"`
	LogFormat     string `json:"log_format"` // "json" or "console"
	DarkMode      bool   `json:"dark_mode"`
	AssetDir      string `json:"asset_dir"`
	ScreenshotDir string `json:"screenshot_dir"`

	// Actuator
	Port     string            `json:"port"`
	BaudRate int               `json:"baud_rate"`
	Actuator string            `json:"actuator"` // serial, keyboard, dryrun
	Keys     map[string]string `json:"keys,omitempty"`

	// Recognition parameters
	MinScale        float64 `json:"min_scale"`
	MaxScale        float64 `json:"max_scale"`
	ScaleSteps      int     `json:"scale_steps"`
	CardThreshold   float64 `json:"card_threshold"`
	StatusThreshold float64 `json:"status_threshold"`
	Workers         int     `json:"workers"`

	// Loop pacing
	MinCycleIntervalMs int `json:"min_cycle_interval_ms"`
	FailureBackoffMs   int `json:"failure_backoff_ms"`
	MaxBackoffMs       int `json:"max_backoff_ms"`

	// Table layout offset applied to every region
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`

	// Websocket snapshot feed; empty disables it
	FeedAddr string `json:"feed_addr"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		LogFormat:          "json",
		DarkMode:           false,
		AssetDir:           "assets",
		ScreenshotDir:      ".",
		Port:               "",
		BaudRate:           9600,
		Actuator:           "serial",
		MinScale:           0.9,
		MaxScale:           2.2,
		ScaleSteps:         18,
		CardThreshold:      0.95,
		StatusThreshold:    0.1,
		Workers:            0,
		MinCycleIntervalMs: 50,
		FailureBackoffMs:   100,
		MaxBackoffMs:       2000,
		OffsetX:            0,
		OffsetY:            0,
		FeedAddr:           "",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		c.LogFormat = "json"
	}
	if c.AssetDir == "" {
		c.AssetDir = "assets"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
	if c.BaudRate <= 0 {
		c.BaudRate = 9600
	}
	switch c.Actuator {
	case "serial", "keyboard", "dryrun":
	default:
		c.Actuator = "serial"
	}
	if c.MinScale <= 0 {
		c.MinScale = 0.9
	}
	if c.MaxScale <= 0 || c.MaxScale < c.MinScale {
		c.MaxScale = c.MinScale + 1.3
	}
	if c.ScaleSteps <= 0 {
		c.ScaleSteps = 18
	}
	if c.ScaleSteps > 64 {
		c.ScaleSteps = 64
	}
	if c.CardThreshold <= 0 || c.CardThreshold > 1 {
		c.CardThreshold = 0.95
	}
	if c.StatusThreshold <= 0 || c.StatusThreshold > 1 {
		c.StatusThreshold = 0.1
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.MinCycleIntervalMs < 0 {
		c.MinCycleIntervalMs = 50
	}
	if c.FailureBackoffMs <= 0 {
		c.FailureBackoffMs = 100
	}
	if c.MaxBackoffMs < c.FailureBackoffMs {
		c.MaxBackoffMs = c.FailureBackoffMs
	}
	return nil
}

// MinCycleInterval, FailureBackoff and MaxBackoff expose the pacing fields
// as durations.
func (c *Config) MinCycleInterval() time.Duration {
	return time.Duration(c.MinCycleIntervalMs) * time.Millisecond
}

func (c *Config) FailureBackoff() time.Duration {
	return time.Duration(c.FailureBackoffMs) * time.Millisecond
}

func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
