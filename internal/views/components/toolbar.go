package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunControls holds the Run Up, Run Down and Cancel buttons
type RunControls struct {
	container     *fyne.Container
	runUpButton   *widget.Button
	runDownButton *widget.Button
	cancelButton  *widget.Button

	runUpHandler   func()
	runDownHandler func()
	cancelHandler  func()
}

func NewRunControls() *RunControls {
	rc := &RunControls{}
	rc.createComponents()
	rc.buildLayout()
	rc.setupEventHandlers()
	return rc
}

func (rc *RunControls) createComponents() {
	rc.runUpButton = widget.NewButton("Run Up", nil)
	rc.runUpButton.Importance = widget.HighImportance

	rc.runDownButton = widget.NewButton("Run Down", nil)
	rc.runDownButton.Importance = widget.HighImportance

	rc.cancelButton = widget.NewButton("Cancel", nil)
	rc.cancelButton.Importance = widget.MediumImportance
	rc.cancelButton.Disable()
}

func (rc *RunControls) buildLayout() {
	rc.container = container.NewHBox(
		rc.runUpButton,
		rc.runDownButton,
		widget.NewSeparator(),
		rc.cancelButton,
	)
}

func (rc *RunControls) setupEventHandlers() {
	rc.runUpButton.OnTapped = func() {
		if rc.runUpHandler != nil {
			rc.runUpHandler()
		}
	}

	rc.runDownButton.OnTapped = func() {
		if rc.runDownHandler != nil {
			rc.runDownHandler()
		}
	}

	rc.cancelButton.OnTapped = func() {
		if rc.cancelHandler != nil {
			rc.cancelHandler()
		}
	}
}

func (rc *RunControls) SetRunUpHandler(handler func()) {
	rc.runUpHandler = handler
}

func (rc *RunControls) SetRunDownHandler(handler func()) {
	rc.runDownHandler = handler
}

func (rc *RunControls) SetCancelHandler(handler func()) {
	rc.cancelHandler = handler
}

// SetRunningActive disables the run triggers while a run is in progress
func (rc *RunControls) SetRunningActive(active bool) {
	if active {
		rc.runUpButton.Disable()
		rc.runDownButton.Disable()
		rc.cancelButton.Enable()
	} else {
		rc.runUpButton.Enable()
		rc.runDownButton.Enable()
		rc.cancelButton.Disable()
	}
}

func (rc *RunControls) GetContainer() *fyne.Container {
	return rc.container
}
