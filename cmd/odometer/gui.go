package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"odometer/internal/config"
	"odometer/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI(cmd.Context(), cfg)
	},
}

// Application is the desktop front end wired to the odometer core
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	view    *views.MainView
	core    *core

	ctx    context.Context
	cancel context.CancelFunc
}

func runGUI(ctx context.Context, cfg config.Config) error {
	application, err := NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	return application.Run()
}

// NewApplication builds the window, the core and binds them together
func NewApplication(ctx context.Context, cfg config.Config) (*Application, error) {
	log, logFile, err := buildLogger(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(420, 320))
	window.CenterOnScreen()

	appCtx, appCancel := context.WithCancel(ctx)
	c := newCore(appCtx, cfg, log, logFile)

	view := views.NewMainView(window)
	view.Bind(c.controller)
	c.controller.SetPresenter(view)

	log.Info("Application", "application initialized", map[string]interface{}{
		"version":       AppVersion,
		"go_version":    runtime.Version(),
		"log_level":     cfg.Level().String(),
		"up_interval":   cfg.UpInterval.String(),
		"down_interval": cfg.DownInterval.String(),
	})

	application := &Application{
		fyneApp: fyneApp,
		window:  window,
		view:    view,
		core:    c,
		ctx:     appCtx,
		cancel:  appCancel,
	}
	application.setupWindowEvents()

	return application, nil
}

// Run shows the window and blocks until the application quits
func (a *Application) Run() error {
	a.core.logger.Info("Application", "starting UI", nil)

	a.core.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	go a.monitorRuns()

	a.view.Show()
	a.fyneApp.Run()

	a.core.controller.SetPresenter(nil)
	a.cancel()
	a.core.close()
	return nil
}

func (a *Application) setupWindowEvents() {
	a.window.SetCloseIntercept(func() {
		if !a.core.runService.IsRunning() {
			a.window.Close()
			return
		}

		a.view.ShowConfirm(
			"Exit Odometer",
			"A run is in progress. Stop it and exit?",
			func(confirmed bool) {
				if confirmed {
					a.core.controller.OnCancelRun()
					a.window.Close()
				}
			},
		)
	})

	a.window.SetOnClosed(func() {
		a.core.logger.Info("Application", "window closed", nil)
		// the window can no longer render, stop updates before the run is cancelled
		a.core.controller.SetPresenter(nil)
		a.cancel()
	})
}

// monitorRuns logs aggregate run statistics while the application is up
func (a *Application) monitorRuns() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := a.core.runService.GetRunStats()
			up := a.core.timing.Summary("run_up")
			down := a.core.timing.Summary("run_down")
			a.core.logger.Debug("Application", "run statistics", map[string]interface{}{
				"total_runs":     stats.TotalRuns,
				"completed_runs": stats.CompletedRuns,
				"cancelled_runs": stats.CancelledRuns,
				"total_ticks":    stats.TotalTicks,
				"avg_run_up":     up.Average.String(),
				"max_run_up":     up.Max.String(),
				"avg_run_down":   down.Average.String(),
				"max_run_down":   down.Max.String(),
				"dropped_events": a.core.events.Dropped(),
			})
		case <-a.ctx.Done():
			return
		}
	}
}
