package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// Dispatcher delivers action tokens to the actuator.
type Dispatcher interface {
	Send(ctx context.Context, a decision.Action) error
	Close() error
}

var (
	ErrUnknownAction = errors.New("dispatch: unknown action")
	ErrClosed        = errors.New("dispatch: closed")
	ErrUnsupported   = errors.New("dispatch: not supported on this platform")
)

// DispatchError reports a token that did not reach the actuator. Callers
// surface it to the operator; it is not retried.
type DispatchError struct {
	Action decision.Action
	Target string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %q to %s: %v", e.Action, e.Target, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Kind selects a dispatcher implementation.
type Kind string

const (
	KindSerial   Kind = "serial"
	KindKeyboard Kind = "keyboard"
	KindDryRun   Kind = "dryrun"
)

// Options configures Open.
type Options struct {
	Kind     Kind
	Port     string
	BaudRate int
	Keys     map[decision.Action]string
}

// Open builds the dispatcher selected by opts.Kind.
func Open(opts Options, logger *slog.Logger) (Dispatcher, error) {
	switch opts.Kind {
	case KindSerial, "":
		s, err := OpenSerial(opts.Port, opts.BaudRate, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindKeyboard:
		k, err := NewKeyboard(opts.Keys, logger)
		if err != nil {
			return nil, err
		}
		return k, nil
	case KindDryRun:
		return NewDryRun(logger), nil
	default:
		return nil, fmt.Errorf("dispatch: unknown kind %q", opts.Kind)
	}
}

func checkAction(a decision.Action, target string) error {
	if !a.Valid() {
		return &DispatchError{Action: a, Target: target, Err: ErrUnknownAction}
	}
	return nil
}
