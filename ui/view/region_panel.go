package view

import (
	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RegionPanel shows the latest recognized codes per card region.
type RegionPanel interface {
	SetRegion(name, text string)
	Reset()
}

type regionPanel struct {
	values map[string]*TLabelWidget
}

// NewRegionPanel grids one name/value pair per region inside a frame placed
// at row, spanning cols columns. Board regions go on the first line, hand
// regions on the second.
func NewRegionPanel(row, cols int, board, hand []string) RegionPanel {
	frame := Frame(Borderwidth(1), Relief("groove"))
	Grid(frame, Row(row), Column(0), Columnspan(cols), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	p := &regionPanel{values: make(map[string]*TLabelWidget)}
	place := func(r int, names []string) {
		for i, name := range names {
			lbl := Label(Txt(name), Anchor("e"))
			Grid(lbl, In(frame), Row(r), Column(2*i), Sticky("e"), Padx("0.3m"), Pady("0.2m"))
			val := TLabel(Txt(string(card.Placeholder)), Style(theme.StyleCardLabel), Width(8))
			Grid(val, In(frame), Row(r), Column(2*i+1), Sticky("w"), Padx("0.3m"), Pady("0.2m"))
			p.values[name] = val
		}
	}
	place(0, board)
	place(1, hand)
	return p
}

func (p *regionPanel) SetRegion(name, text string) {
	if p == nil {
		return
	}
	if w := p.values[name]; w != nil {
		w.Configure(Txt(text))
	}
}

// Reset shows the placeholder in every region.
func (p *regionPanel) Reset() {
	if p == nil {
		return
	}
	for _, w := range p.values {
		w.Configure(Txt(string(card.Placeholder)))
	}
}
