package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// DefaultBaudRate matches the actuator firmware.
const DefaultBaudRate = 9600

// port is the subset of serial.Port the dispatcher needs.
type port interface {
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// SerialDispatcher writes newline terminated tokens to a serial port.
type SerialDispatcher struct {
	mu     sync.Mutex
	name   string
	port   port
	logger *slog.Logger
	closed bool
}

// OpenSerial opens name at baud (8N1).
func OpenSerial(name string, baud int, logger *slog.Logger) (*SerialDispatcher, error) {
	if name == "" {
		return nil, fmt.Errorf("dispatch: no serial port selected")
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch: open %s: %w", name, err)
	}
	if logger != nil {
		logger.Info("serial port opened", "port", name, "baud", baud)
	}
	return newSerialDispatcher(name, p, logger), nil
}

func newSerialDispatcher(name string, p port, logger *slog.Logger) *SerialDispatcher {
	return &SerialDispatcher{name: name, port: p, logger: logger}
}

// Port returns the port name.
func (s *SerialDispatcher) Port() string { return s.name }

// Send writes the token followed by a newline and waits for it to drain.
func (s *SerialDispatcher) Send(ctx context.Context, a decision.Action) error {
	if err := checkAction(a, s.name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &DispatchError{Action: a, Target: s.name, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &DispatchError{Action: a, Target: s.name, Err: ErrClosed}
	}
	line := []byte(string(a) + "\n")
	n, err := s.port.Write(line)
	if err == nil && n != len(line) {
		err = fmt.Errorf("short write %d/%d", n, len(line))
	}
	if err == nil {
		err = s.port.Drain()
	}
	if err != nil {
		return &DispatchError{Action: a, Target: s.name, Err: err}
	}
	if s.logger != nil {
		s.logger.Info("command sent", "action", a.String(), "port", s.name)
	}
	return nil
}

// Close releases the port. Further sends fail with ErrClosed.
func (s *SerialDispatcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.logger != nil {
		s.logger.Info("serial port closed", "port", s.name)
	}
	return s.port.Close()
}

// PortInfo describes an available serial port.
type PortInfo struct {
	Name    string
	Product string
	USB     bool
	VID     string
	PID     string
}

func (p PortInfo) String() string {
	if p.Product == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Product)
}

// ListPorts enumerates serial ports sorted by name. USB details are filled
// where the platform reports them.
func ListPorts() ([]PortInfo, error) {
	var out []PortInfo
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		for _, d := range details {
			out = append(out, PortInfo{Name: d.Name, Product: d.Product, USB: d.IsUSB, VID: d.VID, PID: d.PID})
		}
	} else {
		names, lerr := serial.GetPortsList()
		if lerr != nil {
			return nil, fmt.Errorf("dispatch: list ports: %w", lerr)
		}
		for _, n := range names {
			out = append(out, PortInfo{Name: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PortNames returns just the names from ListPorts.
func PortNames() ([]string, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names, nil
}
