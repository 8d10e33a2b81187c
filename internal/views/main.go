package views

import (
	"fmt"

	"odometer/internal/controllers"
	"odometer/internal/odometer"
	"odometer/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// MainView is the odometer window: six columns, run controls and the totals
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	columns       [odometer.Columns]*components.Column
	controls      *components.RunControls
	totals        *components.TotalsDisplay
}

var _ controllers.Presenter = (*MainView)(nil)

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()

	return view
}

func (mv *MainView) initializeComponents() {
	for i := range mv.columns {
		mv.columns[i] = components.NewColumn(i)
	}
	mv.controls = components.NewRunControls()
	mv.totals = components.NewTotalsDisplay()
}

func (mv *MainView) buildLayout() {
	// most significant column on the left
	digits := container.NewGridWithColumns(odometer.Columns)
	for i := odometer.Columns - 1; i >= 0; i-- {
		digits.Add(mv.columns[i].GetContainer())
	}

	mv.mainContainer = container.NewBorder(
		nil,
		mv.totals.GetContainer(),
		nil,
		nil,
		container.NewVBox(
			digits,
			widget.NewSeparator(),
			container.NewCenter(mv.controls.GetContainer()),
		),
	)

	mv.window.SetContent(mv.mainContainer)
}

// Bind forwards every trigger in the view to h
func (mv *MainView) Bind(h controllers.Handlers) {
	for _, column := range mv.columns {
		column.SetIncrementHandler(h.OnColumnIncrement)
		column.SetDecrementHandler(h.OnColumnDecrement)
	}
	mv.controls.SetRunUpHandler(h.OnRunUp)
	mv.controls.SetRunDownHandler(h.OnRunDown)
	mv.controls.SetCancelHandler(h.OnCancelRun)
}

func (mv *MainView) ShowDigits(digits [odometer.Columns]int) {
	fyne.Do(func() {
		for i, column := range mv.columns {
			column.SetValue(digits[i])
		}
	})
}

func (mv *MainView) ShowTotals(text string) {
	fyne.Do(func() {
		mv.totals.SetTotals(text)
	})
}

func (mv *MainView) SetRunning(running bool) {
	fyne.Do(func() {
		mv.controls.SetRunningActive(running)
		mv.totals.SetRunning(running)
		for _, column := range mv.columns {
			column.SetEnabled(!running)
		}
	})
}

func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), mv.window)
	})
}

func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, callback, mv.window)
	})
}

func (mv *MainView) Show() {
	fyne.Do(func() {
		mv.window.Show()
	})
}
