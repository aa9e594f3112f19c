package dispatch

import (
	"strings"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

// DefaultKeys maps each action to the table client's keyboard shortcut.
var DefaultKeys = map[decision.Action]string{
	decision.ActionCall:  "C",
	decision.ActionFold:  "F",
	decision.ActionStart: "S",
}

// ParseVK converts a key token (e.g. "F3", "R") into a Windows virtual-key
// code. Recognizes F1..F12, letters and digits. ok is false for anything else.
func ParseVK(key string) (vk byte, ok bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	switch {
	case len(k) == 1 && k[0] >= 'A' && k[0] <= 'Z':
		return k[0], true // 'A'..'Z' match VK codes
	case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
		return k[0], true
	case len(k) == 2 && k[0] == 'F' && k[1] >= '1' && k[1] <= '9':
		return byte(0x70 + (k[1] - '1')), true // VK_F1=0x70
	}
	switch k {
	case "F10":
		return 0x79, true
	case "F11":
		return 0x7A, true
	case "F12":
		return 0x7B, true
	case "SPACE":
		return 0x20, true
	case "ENTER":
		return 0x0D, true
	}
	return 0, false
}

// keyTable resolves every action to a virtual key, filling gaps from
// DefaultKeys.
func keyTable(keys map[decision.Action]string) (map[decision.Action]byte, error) {
	out := make(map[decision.Action]byte, len(DefaultKeys))
	for a, def := range DefaultKeys {
		k := def
		if v, ok := keys[a]; ok && v != "" {
			k = v
		}
		vk, ok := ParseVK(k)
		if !ok {
			return nil, &DispatchError{Action: a, Target: "keyboard", Err: ErrUnknownKey(k)}
		}
		out[a] = vk
	}
	return out, nil
}

// ErrUnknownKey is returned for unparseable key tokens.
type ErrUnknownKey string

func (e ErrUnknownKey) Error() string { return "dispatch: unknown key " + string(e) }
