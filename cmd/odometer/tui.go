package main

import (
	"context"

	"odometer/internal/config"
	"odometer/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the odometer in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), cfg)
	},
}

func runTUI(ctx context.Context, cfg config.Config) error {
	// Logging to the terminal would tear the screen, so only a log file is used.
	log, logFile, err := buildLogger(cfg, nil)
	if err != nil {
		return err
	}

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := newCore(appCtx, cfg, log, logFile)
	defer c.close()

	c.shutdown.Listen(cancel)

	presenter := tui.NewPresenter(1024)
	c.controller.SetPresenter(presenter)
	defer func() {
		c.controller.SetPresenter(nil)
		presenter.Detach()
	}()

	log.Info("Application", "starting terminal UI", map[string]interface{}{
		"version": AppVersion,
	})

	return tui.Run(appCtx, c.controller, presenter, tea.WithAltScreen())
}
