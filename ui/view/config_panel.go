package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/poker-pixel-bot/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
// Changes take effect for the next session; the panel is read-only while
// connected.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
	onApply  func(*config.Config)
}

// NewConfigPanel creates the view bound to cfg.
// onApply, if set, runs after a valid change is stored and before it is saved.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApply func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget), onApply: onApply}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("actuator", "Actuator (serial/keyboard/dryrun)", c.Actuator)
	makeRow("baudRate", "Baud Rate", fmt.Sprintf("%d", c.BaudRate))
	makeRow("minScale", "Min Scale", fmt.Sprintf("%.2f", c.MinScale))
	makeRow("maxScale", "Max Scale", fmt.Sprintf("%.2f", c.MaxScale))
	makeRow("scaleSteps", "Scale Steps", fmt.Sprintf("%d", c.ScaleSteps))
	makeRow("cardThreshold", "Card Threshold", fmt.Sprintf("%.3f", c.CardThreshold))
	makeRow("statusThreshold", "Status Threshold", fmt.Sprintf("%.3f", c.StatusThreshold))
	makeRow("workers", "Match Workers (0 = all CPUs)", fmt.Sprintf("%d", c.Workers))
	makeRow("minCycleIntervalMs", "Min Cycle Interval ms", fmt.Sprintf("%d", c.MinCycleIntervalMs))
	makeRow("failureBackoffMs", "Failure Backoff ms", fmt.Sprintf("%d", c.FailureBackoffMs))
	makeRow("maxBackoffMs", "Max Backoff ms", fmt.Sprintf("%d", c.MaxBackoffMs))
	makeRow("offsetX", "Table Offset X", fmt.Sprintf("%d", c.OffsetX))
	makeRow("offsetY", "Table Offset Y", fmt.Sprintf("%d", c.OffsetY))
	makeRow("screenshotDir", "Screenshot Folder", c.ScreenshotDir)
	makeRow("darkMode", "Dark Mode (true/false)", fmt.Sprintf("%t", c.DarkMode))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if f, ok := parseFloatField(strings.TrimSpace(v.text(w))); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if i, ok := parseIntField(strings.TrimSpace(v.text(w))); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if b, ok := parseBoolLoose(strings.TrimSpace(v.text(w))); ok {
			*dst = b
		}
	}
	assignString := func(id string, dst *string) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if val := strings.TrimSpace(v.text(w)); val != "" {
			*dst = val
		}
	}
	assignString("actuator", &cfg.Actuator)
	assignInt("baudRate", &cfg.BaudRate)
	assignFloat("minScale", &cfg.MinScale)
	assignFloat("maxScale", &cfg.MaxScale)
	assignInt("scaleSteps", &cfg.ScaleSteps)
	assignFloat("cardThreshold", &cfg.CardThreshold)
	assignFloat("statusThreshold", &cfg.StatusThreshold)
	assignInt("workers", &cfg.Workers)
	assignInt("minCycleIntervalMs", &cfg.MinCycleIntervalMs)
	assignInt("failureBackoffMs", &cfg.FailureBackoffMs)
	assignInt("maxBackoffMs", &cfg.MaxBackoffMs)
	assignInt("offsetX", &cfg.OffsetX)
	assignInt("offsetY", &cfg.OffsetY)
	assignString("screenshotDir", &cfg.ScreenshotDir)
	assignBool("darkMode", &cfg.DarkMode)
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if v.onApply != nil {
		v.onApply(v.cfg)
	}
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
