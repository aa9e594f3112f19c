package presenter

import "github.com/soocke/poker-pixel-bot/ui/model"

// ConsoleView shows the console history.
type ConsoleView interface{ SetConsole(lines []string) }

// ConsolePresenter redraws the console view when new lines were appended.
type ConsolePresenter struct {
	model *model.ConsoleModel
	view  ConsoleView
}

func NewConsolePresenter(m *model.ConsoleModel, view ConsoleView) *ConsolePresenter {
	return &ConsolePresenter{model: m, view: view}
}

func (p *ConsolePresenter) Tick() {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	if p.model.TakeDirty() {
		p.view.SetConsole(p.model.Lines())
	}
}
