package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"odometer/internal/config"
	"odometer/internal/controllers"
	"odometer/internal/debug/eventbus"
	"odometer/internal/debug/timing"
	"odometer/internal/logger"
	"odometer/internal/models"
	"odometer/internal/services"
	"odometer/internal/shutdown"
)

const shutdownTimeout = 5 * time.Second

// core is the presentation-independent part of the application
type core struct {
	logger     logger.Logger
	events     *eventbus.Bus
	timing     *timing.Tracker
	repo       *models.OdometerRepository
	runService *services.RunService
	controller *controllers.MainController
	shutdown   *shutdown.Manager
	logFile    io.Closer
	eventLog   eventbus.HandlerFunc
}

func newCore(ctx context.Context, cfg config.Config, log logger.Logger, logFile io.Closer) *core {
	events := eventbus.NewBus(1024, log)
	tracker := timing.NewTracker(events)
	repo := models.NewOdometerRepository()
	runService := services.NewRunService(repo, cfg, log, events, tracker)
	controller := controllers.NewMainController(ctx, repo, runService, log, events)

	eventLog := subscribeEventLog(events, log)

	if _, err := repo.SetValue(cfg.Start); err != nil {
		log.Error("Application", err, map[string]interface{}{"start": cfg.Start})
	}

	manager := shutdown.NewManager(log)
	manager.SetTimeout(shutdownTimeout)
	manager.Register(shutdown.Func(events.Shutdown))
	manager.Register(controller)

	return &core{
		logger:     log,
		events:     events,
		timing:     tracker,
		repo:       repo,
		runService: runService,
		controller: controller,
		shutdown:   manager,
		logFile:    logFile,
		eventLog:   eventLog,
	}
}

// close stops every component and releases the log file
func (c *core) close() {
	for _, eventType := range loggedEvents {
		c.events.Unsubscribe(eventType, c.eventLog)
	}
	c.shutdown.Shutdown()

	if dropped := c.events.Dropped(); dropped > 0 {
		c.logger.Warning("EventBus", "events dropped on a full buffer", map[string]interface{}{
			"dropped": dropped,
		})
	}
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

// buildLogger returns the logger described by cfg. Without a log file it
// writes to fallback, or discards everything when fallback is nil.
func buildLogger(cfg config.Config, fallback io.Writer) (logger.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return newLogger(cfg, f), f, nil
	}

	if fallback == nil {
		return logger.NoOpLogger{}, nil, nil
	}
	return newLogger(cfg, fallback), nil, nil
}

func newLogger(cfg config.Config, w io.Writer) logger.Logger {
	if cfg.LogFormat == config.LogFormatSlog {
		return logger.NewStructuredLogger(w, cfg.Level(), cfg.JSONLogs)
	}
	return logger.New(w, cfg.Level(), cfg.JSONLogs)
}

var loggedEvents = []string{
	eventbus.ColumnChanged,
	eventbus.RunStarted,
	eventbus.RunCompleted,
	eventbus.RunCancelled,
	timing.TimingCompleted,
}

func subscribeEventLog(bus *eventbus.Bus, log logger.Logger) eventbus.HandlerFunc {
	handler := eventbus.HandlerFunc{
		ID: "event-log",
		Fn: func(event eventbus.Event) {
			log.Debug("EventBus", event.Type, event.Data)
		},
	}

	for _, eventType := range loggedEvents {
		bus.Subscribe(eventType, handler)
	}
	return handler
}
