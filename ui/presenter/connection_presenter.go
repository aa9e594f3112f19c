package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ConnectionModel provides connected state access.
type ConnectionModel interface {
	Connected() bool
	Port() string
	SetConnected(b bool, port string)
}

// SessionControl narrows what the presenter needs from the session controller.
type SessionControl interface {
	Start(ctx context.Context, port string) (string, error)
	Stop() bool
	Running() bool
	Err() error
}

// ConnectionView updates UI elements affected by connecting and disconnecting.
// Status label updates are owned by SnapshotPresenter.
type ConnectionView interface {
	SetConnected(connected bool)
	ConfigEditable(bool)
	SetPorts(ports []string)
	ConfirmDisconnect(port string) bool
}

// Console receives operator-facing log lines.
type Console interface {
	Append(now time.Time, line string)
}

// ConnectionPresenter owns presentation logic for starting and stopping a
// session on the selected port.
type ConnectionPresenter struct {
	ctx     context.Context
	model   ConnectionModel
	ctrl    SessionControl
	view    ConnectionView
	console Console
	ports   func() ([]string, error)
	logger  *slog.Logger
	now     func() time.Time
}

func NewConnectionPresenter(ctx context.Context, model ConnectionModel, ctrl SessionControl, view ConnectionView, console Console, ports func() ([]string, error), logger *slog.Logger) *ConnectionPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConnectionPresenter{ctx: ctx, model: model, ctrl: ctrl, view: view, console: console, ports: ports, logger: logger, now: time.Now}
}

func (c *ConnectionPresenter) ready() bool {
	return c != nil && c.model != nil && c.ctrl != nil && c.view != nil && c.console != nil
}

// Connect starts a session on port. Idempotent while connected.
func (c *ConnectionPresenter) Connect(port string) {
	if !c.ready() || c.model.Connected() {
		return
	}
	id, err := c.ctrl.Start(c.ctx, port)
	if err != nil {
		c.logger.Error("connect failed", "port", port, "error", err)
		c.console.Append(c.now(), fmt.Sprintf("Connect to %s failed: %v", displayPort(port), err))
		return
	}
	c.model.SetConnected(true, port)
	c.view.SetConnected(true)
	c.view.ConfigEditable(false)
	c.console.Append(c.now(), fmt.Sprintf("Connected to %s (session %s)", displayPort(port), shortID(id)))
}

// Disconnect asks for confirmation, then requests a stop. The worker exits
// after its current cycle. Idempotent while disconnected.
func (c *ConnectionPresenter) Disconnect() {
	if !c.ready() || !c.model.Connected() {
		return
	}
	port := c.model.Port()
	if !c.view.ConfirmDisconnect(port) {
		return
	}
	c.ctrl.Stop()
	c.model.SetConnected(false, "")
	c.view.SetConnected(false)
	c.view.ConfigEditable(true)
	c.console.Append(c.now(), "Disconnected from "+displayPort(port))
}

// Toggle flips connected state delegating to Connect/Disconnect.
func (c *ConnectionPresenter) Toggle(port string) {
	if !c.ready() {
		return
	}
	if c.model.Connected() {
		c.Disconnect()
		return
	}
	c.Connect(port)
}

// RefreshPorts re-enumerates serial ports into the view.
func (c *ConnectionPresenter) RefreshPorts() {
	if !c.ready() || c.ports == nil {
		return
	}
	names, err := c.ports()
	if err != nil {
		c.logger.Warn("port enumeration failed", "error", err)
		c.console.Append(c.now(), fmt.Sprintf("Port scan failed: %v", err))
	}
	c.view.SetPorts(names)
	if err == nil && len(names) == 0 {
		c.console.Append(c.now(), "No serial ports found")
	}
}

// Tick notices a worker that exited on its own and resets the controls.
func (c *ConnectionPresenter) Tick(now time.Time) {
	if !c.ready() || !c.model.Connected() || c.ctrl.Running() {
		return
	}
	c.model.SetConnected(false, "")
	c.view.SetConnected(false)
	c.view.ConfigEditable(true)
	if err := c.ctrl.Err(); err != nil {
		c.console.Append(now, fmt.Sprintf("Session ended: %v", err))
		return
	}
	c.console.Append(now, "Session ended")
}

func displayPort(port string) string {
	if port == "" {
		return "<no port>"
	}
	return port
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
