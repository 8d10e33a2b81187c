package tui

import (
	"context"
	"fmt"

	"odometer/internal/controllers"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the terminal front end until the user quits or ctx is done.
// presenter must already be attached to the controller behind handlers.
func Run(ctx context.Context, handlers controllers.Handlers, presenter *Presenter, opts ...tea.ProgramOption) error {
	dispatcher := NewDispatcher(256)
	defer dispatcher.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithContext(runCtx)}, opts...)
	program := tea.NewProgram(NewModel(handlers, dispatcher.Dispatch), opts...)
	presenter.Attach(runCtx, program.Send)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
