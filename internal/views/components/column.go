package components

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Column is one odometer digit with its + and - buttons
type Column struct {
	index      int
	container  *fyne.Container
	upButton   *widget.Button
	digitLabel *widget.Label
	downButton *widget.Button

	incrementHandler func(int)
	decrementHandler func(int)
}

// NewColumn creates the column for digit index (0 is least significant)
func NewColumn(index int) *Column {
	column := &Column{index: index}
	column.createComponents()
	column.buildLayout()
	column.setupEventHandlers()
	return column
}

func (c *Column) createComponents() {
	c.upButton = widget.NewButton("+", nil)
	c.digitLabel = widget.NewLabelWithStyle("0", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	c.downButton = widget.NewButton("-", nil)
}

func (c *Column) buildLayout() {
	c.container = container.NewVBox(
		c.upButton,
		c.digitLabel,
		c.downButton,
	)
}

func (c *Column) setupEventHandlers() {
	c.upButton.OnTapped = func() {
		if c.incrementHandler != nil {
			c.incrementHandler(c.index)
		}
	}

	c.downButton.OnTapped = func() {
		if c.decrementHandler != nil {
			c.decrementHandler(c.index)
		}
	}
}

func (c *Column) SetIncrementHandler(handler func(int)) {
	c.incrementHandler = handler
}

func (c *Column) SetDecrementHandler(handler func(int)) {
	c.decrementHandler = handler
}

// SetValue shows digit. Call on the UI goroutine.
func (c *Column) SetValue(digit int) {
	text := strconv.Itoa(digit)
	if c.digitLabel.Text != text {
		c.digitLabel.SetText(text)
	}
}

// SetEnabled toggles both buttons
func (c *Column) SetEnabled(enabled bool) {
	if enabled {
		c.upButton.Enable()
		c.downButton.Enable()
		return
	}
	c.upButton.Disable()
	c.downButton.Disable()
}

func (c *Column) GetContainer() *fyne.Container {
	return c.container
}
