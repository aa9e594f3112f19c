package theme

// Theming for the poker control panel: palette constants, named widget
// styles and the colours used for the table phase label.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // connect, accents
	ColorDanger    = "#dc2626" // disconnect, dispatch errors
	ColorBetting   = "#10b981"
	ColorPaused    = "#d97706"
	ColorIdle      = "#64748b"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Betting   string
	Paused    string
	Idle      string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Betting:   "#34d399",
			Paused:    "#fbbf24",
			Idle:      "#94a3b8",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Betting:   ColorBetting,
		Paused:    ColorPaused,
		Idle:      ColorIdle,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// style names used with Style("connect.TButton") etc.
const (
	StyleConnectButton    = "connect.TButton"
	StyleDisconnectButton = "disconnect.TButton"
	StyleCardLabel        = "card.TLabel"
	StyleStatusLabel      = "status.TLabel"
)

// StatusColor maps a phase label ("Betting.", "Pause.", ...) to the
// background of the status label.
func StatusColor(label string) string {
	p := CurrentPalette()
	switch label {
	case "Betting.":
		return p.Betting
	case "Pause.":
		return p.Paused
	case "Processing.":
		return p.Primary
	default:
		return p.Idle
	}
}

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(darkMode) }

// SetDark sets dark mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(darkMode)
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(dark bool) {
	p := CurrentPalette()
	if dark {
		_ = ActivateTheme("azure dark")
	} else {
		_ = ActivateTheme("azure light")
	}
	App.Configure(Background(p.AppBg))

	StyleConfigure(StyleConnectButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDisconnectButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	// Card codes read best in a fixed-width face.
	StyleConfigure(StyleCardLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Font("TkFixedFont"),
		Padding("3p 1p"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground("white"),
		Background(p.Idle),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}

// SetStatus recolours the status label style for the given phase label.
func SetStatus(label string) {
	StyleConfigure(StyleStatusLabel, Background(StatusColor(label)))
}
