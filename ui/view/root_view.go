package view

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/soocke/poker-pixel-bot/config"
	"github.com/soocke/poker-pixel-bot/ui/model"
	"github.com/soocke/poker-pixel-bot/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const noPorts = "<no ports>"

// Handlers are invoked on user actions.
type Handlers struct {
	OnConnect    func(port string)
	OnDisconnect func()
	OnRefresh    func()
	OnScreenshot func()
	OnExit       func()
	OnApply      func(*config.Config)
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Regions     RegionPanel
	Console     ConsoleView

	// Widgets
	StatusLabel   *TLabelWidget
	ActionLabel   *LabelWidget
	PortSelect    *TComboboxWidget
	ConnectBtn    *TButtonWidget
	DisconnectBtn *TButtonWidget
	ports         []string
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStatusLabel(text string)
	SetRegion(name, text string)
	SetLastAction(text string)
	SetConnected(connected bool)
	ConfigEditable(enabled bool)
	SetPorts(ports []string)
	ConfirmDisconnect(port string) bool
	SetSession(v model.SessionValues)
	SetConsole(lines []string)
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. ports seeds the port dropdown; board and hand
// name the card regions in display order.
func (rv *RootView) Build(ports, board, hand []string, h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: session stats, status label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StatusLabel = TLabel(Txt("Idle."), Style(theme.StyleStatusLabel), Width(12), Anchor("center"))
	Grid(rv.StatusLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.PortSelect = TCombobox(Values([]string{noPorts}), Width(26), State("readonly"))
	Grid(rv.PortSelect, In(btnFrame), Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.SetPorts(ports)
	rv.ConnectBtn = TButton(Txt("Connect"), Style(theme.StyleConnectButton), Command(func() {
		if h.OnConnect != nil {
			h.OnConnect(rv.selectedPort())
		}
	}))
	Grid(rv.ConnectBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.DisconnectBtn = TButton(Txt("Disconnect"), Style(theme.StyleDisconnectButton), State("disabled"), Command(h.OnDisconnect))
	Grid(rv.DisconnectBtn, In(btnFrame), Row(1), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	refreshBtn := Button(Txt("Refresh Ports"), Command(h.OnRefresh))
	Grid(refreshBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	shotBtn := Button(Txt("Screenshot"), Command(h.OnScreenshot))
	Grid(shotBtn, In(btnFrame), Row(2), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(h.OnExit))
	Grid(exitBtn, In(btnFrame), Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: card regions; row 2: last dispatched action
	rv.Regions = NewRegionPanel(1, 4, board, hand)
	rv.ActionLabel = Label(Txt("Last action: -"), Anchor("w"))
	Grid(rv.ActionLabel, Row(2), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	// Config panel rows, then the console below them
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.OnApply)
	endRow := rv.ConfigPanel.Build(3)
	rv.Console = NewConsoleView(endRow, 5)
}

func (rv *RootView) selectedPort() string {
	if rv == nil || rv.PortSelect == nil {
		return ""
	}
	idx, err := strconv.Atoi(rv.PortSelect.Current(nil))
	if err != nil || idx < 0 || idx >= len(rv.ports) {
		if rv.logger != nil && len(rv.ports) > 0 {
			rv.logger.Error("port selection parse error", "error", err)
		}
		return ""
	}
	return rv.ports[idx]
}

// SetPorts replaces the dropdown entries and selects the configured port
// when present, else the first one.
func (rv *RootView) SetPorts(ports []string) {
	if rv == nil || rv.PortSelect == nil {
		return
	}
	rv.ports = append([]string(nil), ports...)
	if len(rv.ports) == 0 {
		rv.PortSelect.Configure(Values([]string{noPorts}))
		rv.PortSelect.Current(0)
		return
	}
	rv.PortSelect.Configure(Values(rv.ports))
	sel := 0
	for i, p := range rv.ports {
		if rv.cfg != nil && p == rv.cfg.Port {
			sel = i
		}
	}
	rv.PortSelect.Current(sel)
}

// SetStatusLabel updates the status label text and colour.
func (rv *RootView) SetStatusLabel(text string) {
	if rv != nil && rv.StatusLabel != nil {
		theme.SetStatus(text)
		rv.StatusLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetRegion(name, text string) {
	if rv != nil && rv.Regions != nil {
		rv.Regions.SetRegion(name, text)
	}
}

func (rv *RootView) SetLastAction(text string) {
	if rv == nil || rv.ActionLabel == nil {
		return
	}
	if text == "" {
		text = "-"
	}
	rv.ActionLabel.Configure(Txt("Last action: " + text))
}

// SetConnected flips which of Connect/Disconnect is usable and locks the
// port dropdown while connected.
func (rv *RootView) SetConnected(connected bool) {
	if rv == nil || rv.ConnectBtn == nil {
		return
	}
	on, off := "normal", "disabled"
	if connected {
		on, off = off, on
	}
	rv.ConnectBtn.Configure(State(on))
	rv.DisconnectBtn.Configure(State(off))
	if connected {
		rv.PortSelect.Configure(State("disabled"))
	} else {
		rv.PortSelect.Configure(State("readonly"))
		if rv.Regions != nil {
			rv.Regions.Reset()
		}
	}
}

// ConfirmDisconnect asks the operator before a session is stopped.
func (rv *RootView) ConfirmDisconnect(port string) bool {
	if port == "" {
		port = "the actuator"
	}
	answer := MessageBox(
		Icon("question"),
		Title("Disconnect"),
		Msg(fmt.Sprintf("Disconnect from %s and stop the bot?", port)),
		Type("okcancel"),
	)
	return answer == "ok"
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// SetSession updates the session stats labels.
func (rv *RootView) SetSession(v model.SessionValues) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetSession(v)
	}
}

func (rv *RootView) SetConsole(lines []string) {
	if rv != nil && rv.Console != nil {
		rv.Console.SetConsole(lines)
	}
}
