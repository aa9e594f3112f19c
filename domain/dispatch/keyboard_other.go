//go:build !windows

package dispatch

import (
	"context"
	"log/slog"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// Keyboard is only available on Windows.
type Keyboard struct{}

func NewKeyboard(keys map[decision.Action]string, logger *slog.Logger) (*Keyboard, error) {
	if _, err := keyTable(keys); err != nil {
		return nil, err
	}
	return nil, &DispatchError{Target: "keyboard", Err: ErrUnsupported}
}

func (k *Keyboard) Send(ctx context.Context, a decision.Action) error {
	return &DispatchError{Action: a, Target: "keyboard", Err: ErrUnsupported}
}

func (k *Keyboard) Close() error { return nil }
