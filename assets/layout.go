package assets

import (
	"path"
	"strings"

	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/region"
)

// Template tree layout, relative to the configured asset directory:
//
//	board/<code>.png          board card templates ("board/AH.png")
//	hand/<side>/<code>.png    hand card templates per side ("hand/left/AH.png")
//	status/<name>.png         status indicators ("status/start.png")
const (
	BoardDir  = "board"
	HandDir   = "hand"
	StatusDir = "status"
	Ext       = ".png"
)

// BoardPath returns the template path of a board card.
func BoardPath(c card.Code) string {
	return path.Join(BoardDir, string(c)+Ext)
}

// HandPath returns the template path of a hand card for one side.
func HandPath(side region.Side, c card.Code) string {
	return path.Join(HandDir, side.String(), string(c)+Ext)
}

// StatusPath returns the template path of a named status indicator.
func StatusPath(name string) string {
	return path.Join(StatusDir, strings.ToLower(name)+Ext)
}

// Required lists every path the template loader expects for the given hand
// sides and status names, in load order.
func Required(sides []region.Side, statuses []string) []string {
	codes := card.All()
	out := make([]string, 0, len(codes)*(1+len(sides))+len(statuses))
	for _, c := range codes {
		out = append(out, BoardPath(c))
	}
	for _, s := range sides {
		for _, c := range codes {
			out = append(out, HandPath(s, c))
		}
	}
	for _, name := range statuses {
		out = append(out, StatusPath(name))
	}
	return out
}
