package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// TotalsDisplay shows the place-value breakdown or a run status
type TotalsDisplay struct {
	container   *fyne.Container
	totalsLabel *widget.Label
	stateLabel  *widget.Label
}

func NewTotalsDisplay() *TotalsDisplay {
	td := &TotalsDisplay{}
	td.createComponents()
	td.buildLayout()
	return td
}

func (td *TotalsDisplay) createComponents() {
	td.totalsLabel = widget.NewLabel("")
	td.totalsLabel.Wrapping = fyne.TextWrapWord
	td.stateLabel = widget.NewLabel("Ready")
}

func (td *TotalsDisplay) buildLayout() {
	td.container = container.NewVBox(
		widget.NewCard("", "Totals", td.totalsLabel),
		td.stateLabel,
	)
}

// SetTotals updates the totals text. Call on the UI goroutine.
func (td *TotalsDisplay) SetTotals(text string) {
	if td.totalsLabel.Text != text {
		td.totalsLabel.SetText(text)
	}
}

// SetRunning updates the run state line
func (td *TotalsDisplay) SetRunning(running bool) {
	if running {
		td.stateLabel.SetText("Running")
		return
	}
	td.stateLabel.SetText("Ready")
}

func (td *TotalsDisplay) GetContainer() *fyne.Container {
	return td.container
}
