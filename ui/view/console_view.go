package view

import (
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConsoleView is the read-only session log. Newest line first so the latest
// event is visible without scrolling.
type ConsoleView interface {
	SetConsole(lines []string)
}

type consoleView struct {
	text *TextWidget
}

func NewConsoleView(row, cols int) ConsoleView {
	w := Text(Height(10), Width(72), State("disabled"))
	Grid(w, Row(row), Column(0), Columnspan(cols), Sticky("nswe"), Padx("0.4m"), Pady("0.4m"))
	return &consoleView{text: w}
}

func (v *consoleView) SetConsole(lines []string) {
	if v == nil || v.text == nil {
		return
	}
	rev := make([]string, len(lines))
	for i, l := range lines {
		rev[len(lines)-1-i] = l
	}
	v.text.Configure(State("normal"))
	v.text.Delete("1.0", END)
	v.text.Insert("1.0", strings.Join(rev, "\n"))
	v.text.Configure(State("disabled"))
}
