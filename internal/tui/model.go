// Package tui is the terminal front end of the odometer, built on bubbletea.
//
// Model state is owned by the bubbletea event loop. Controller calls reach it
// as messages through Presenter, and key presses leave it through a
// Dispatcher so that handlers never run on the event loop.
package tui

import (
	"strconv"
	"strings"

	"odometer/internal/controllers"
	"odometer/internal/odometer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Messages delivered by Presenter

type DigitsMsg struct {
	Digits [odometer.Columns]int
}

type TotalsMsg struct {
	Text string
}

type RunningMsg struct {
	Running bool
}

type ErrorMsg struct {
	Title string
	Err   error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	digitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Bold(true)

	selectedDigitStyle = digitStyle.
				BorderForeground(lipgloss.Color("205")).
				Foreground(lipgloss.Color("205"))

	totalsStyle = lipgloss.NewStyle().MarginTop(1)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

const helpText = "←/→ select  ↑/+ increase  ↓/- decrease  u run up  d run down  c cancel  q quit"

// Model is the bubbletea model for the odometer
type Model struct {
	handlers controllers.Handlers
	dispatch func(func()) bool

	digits   [odometer.Columns]int
	totals   string
	running  bool
	selected int
	lastErr  string
	quitting bool
}

// NewModel creates a model forwarding key presses to handlers through dispatch
func NewModel(handlers controllers.Handlers, dispatch func(func()) bool) Model {
	return Model{
		handlers: handlers,
		dispatch: dispatch,
		totals:   odometer.Breakdown([odometer.Columns]int{}),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case DigitsMsg:
		m.digits = msg.Digits

	case TotalsMsg:
		m.totals = msg.Text

	case RunningMsg:
		m.running = msg.Running
		if msg.Running {
			m.lastErr = ""
		}

	case ErrorMsg:
		m.lastErr = msg.Title
		if msg.Err != nil {
			m.lastErr += ": " + msg.Err.Error()
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	col := m.selected

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.send(func() { m.handlers.OnCancelRun() })
		return m, tea.Quit

	case "left", "h":
		if m.selected < odometer.Columns-1 {
			m.selected++
		}

	case "right", "l":
		if m.selected > 0 {
			m.selected--
		}

	case "up", "k", "+":
		if !m.running {
			m.send(func() { m.handlers.OnColumnIncrement(col) })
		}

	case "down", "j", "-":
		if !m.running {
			m.send(func() { m.handlers.OnColumnDecrement(col) })
		}

	case "u":
		m.send(func() { m.handlers.OnRunUp() })

	case "d":
		m.send(func() { m.handlers.OnRunDown() })

	case "c", "esc":
		m.send(func() { m.handlers.OnCancelRun() })
	}

	return m, nil
}

func (m Model) send(fn func()) {
	if m.handlers == nil || m.dispatch == nil {
		return
	}
	m.dispatch(fn)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cells := make([]string, 0, odometer.Columns)
	for col := odometer.Columns - 1; col >= 0; col-- {
		style := digitStyle
		if col == m.selected {
			style = selectedDigitStyle
		}
		cells = append(cells, style.Render(strconv.Itoa(m.digits[col])))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Odometer"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n")
	b.WriteString(totalsStyle.Render(m.totals))
	b.WriteString("\n")

	status := "Ready"
	if m.running {
		status = "Running"
	}
	b.WriteString(statusStyle.Render(status))

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.lastErr))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	b.WriteString("\n")

	return b.String()
}
