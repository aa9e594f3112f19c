package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procKeybdEvent     = user32.NewProc("keybd_event")
	procGetForeground  = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")
)

// Keyboard presses a key per action in the foreground window, for tables
// driven without the microcontroller.
type Keyboard struct {
	mu     sync.Mutex
	keys   map[decision.Action]byte
	logger *slog.Logger
}

func NewKeyboard(keys map[decision.Action]string, logger *slog.Logger) (*Keyboard, error) {
	table, err := keyTable(keys)
	if err != nil {
		return nil, err
	}
	if err := procKeybdEvent.Find(); err != nil {
		return nil, &DispatchError{Target: "keyboard", Err: err}
	}
	return &Keyboard{keys: table, logger: logger}, nil
}

func (k *Keyboard) Send(ctx context.Context, a decision.Action) error {
	if err := checkAction(a, "keyboard"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &DispatchError{Action: a, Target: "keyboard", Err: err}
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	vk := k.keys[a]
	pressKey(vk)
	if k.logger != nil {
		title, _ := foregroundWindowTitle()
		k.logger.Info("command sent", "action", a.String(), "vk", vk, "window", title)
	}
	return nil
}

func (k *Keyboard) Close() error { return nil }

// pressKey sends a key down followed by a key up for vk.
func pressKey(vk byte) {
	const keyEventKeyUp = 0x0002
	_, _, _ = procKeybdEvent.Call(uintptr(vk), 0, 0, 0)
	// emulate human press duration
	time.Sleep(40 * time.Millisecond)
	_, _, _ = procKeybdEvent.Call(uintptr(vk), 0, keyEventKeyUp, 0)
}

// foregroundWindowTitle returns the title of the window receiving input.
func foregroundWindowTitle() (string, error) {
	hwnd, _, _ := procGetForeground.Call()
	if hwnd == 0 {
		return "", ErrUnsupported
	}
	buf := make([]uint16, 256)
	r, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", nil
	}
	end := int(r)
	for i, v := range buf {
		if v == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(utf16.Decode(buf[:end]))), nil
}
