package controllers

import (
	"context"
	"errors"
	"sync"

	"odometer/internal/debug/eventbus"
	"odometer/internal/logger"
	"odometer/internal/models"
	"odometer/internal/odometer"
	"odometer/internal/services"
)

// Presenter renders odometer state. Implementations must be safe to call
// from any goroutine.
type Presenter interface {
	ShowDigits(digits [odometer.Columns]int)
	ShowTotals(text string)
	SetRunning(running bool)
	ShowError(title string, err error)
}

// Handlers are the triggers a presentation layer forwards to the controller
type Handlers interface {
	OnColumnIncrement(col int)
	OnColumnDecrement(col int)
	OnRunUp()
	OnRunDown()
	OnCancelRun()
}

// MainController binds presenter triggers to the odometer model and the run service
type MainController struct {
	repo       *models.OdometerRepository
	runService *services.RunService
	logger     logger.Logger
	events     services.EventPublisher

	mu        sync.RWMutex
	presenter Presenter

	ctx    context.Context
	cancel context.CancelFunc
}

var _ Handlers = (*MainController)(nil)
var _ services.RunObserver = (*MainController)(nil)

func NewMainController(
	ctx context.Context,
	repo *models.OdometerRepository,
	runService *services.RunService,
	log logger.Logger,
	events services.EventPublisher,
) *MainController {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	ctrlCtx, cancel := context.WithCancel(ctx)

	return &MainController{
		repo:       repo,
		runService: runService,
		logger:     log,
		events:     events,
		presenter:  nopPresenter{},
		ctx:        ctrlCtx,
		cancel:     cancel,
	}
}

// SetPresenter attaches the presentation layer and pushes the current state to it
func (mc *MainController) SetPresenter(p Presenter) {
	if p == nil {
		p = nopPresenter{}
	}

	mc.mu.Lock()
	mc.presenter = p
	mc.mu.Unlock()

	snap := mc.repo.GetSnapshot()
	p.ShowDigits(snap.Digits)
	p.ShowTotals(snap.Totals)
	p.SetRunning(snap.State.Running())
}

func (mc *MainController) OnColumnIncrement(col int) {
	mc.step(col, odometer.Up)
}

func (mc *MainController) OnColumnDecrement(col int) {
	mc.step(col, odometer.Down)
}

func (mc *MainController) OnRunUp() {
	mc.startRun(odometer.Up)
}

func (mc *MainController) OnRunDown() {
	mc.startRun(odometer.Down)
}

func (mc *MainController) OnCancelRun() {
	if err := mc.runService.Cancel(); err != nil {
		if errors.Is(err, models.ErrNoRunActive) {
			return
		}
		mc.handleError("Cancel failed", err)
	}
}

// OnRunTick forwards run progress to the presenter
func (mc *MainController) OnRunTick(snapshot models.Snapshot) {
	p := mc.getPresenter()
	p.ShowDigits(snapshot.Digits)
	p.ShowTotals(snapshot.Totals)
}

// OnRunFinished shows the final state of a run
func (mc *MainController) OnRunFinished(result services.RunResult) {
	p := mc.getPresenter()
	p.ShowDigits(result.Snapshot.Digits)
	p.ShowTotals(result.Snapshot.Totals)
	p.SetRunning(false)
}

// Shutdown cancels any active run and waits for it to stop
func (mc *MainController) Shutdown() {
	mc.cancel()
	mc.runService.Shutdown()
	mc.logger.Debug("Controller", "shutdown complete", nil)
}

func (mc *MainController) step(col int, dir odometer.Direction) {
	snap, err := mc.repo.StepColumn(col, dir)
	if err != nil {
		if errors.Is(err, models.ErrRunInProgress) {
			mc.logger.Debug("Controller", "column step ignored during run", map[string]interface{}{
				"column":    col,
				"direction": dir.String(),
			})
			return
		}
		mc.handleError("Column step failed", err)
		return
	}

	p := mc.getPresenter()
	p.ShowDigits(snap.Digits)
	p.ShowTotals(snap.Totals)

	snap = mc.repo.RefreshTotals()
	p.ShowTotals(snap.Totals)

	mc.logger.Debug("Controller", "column stepped", map[string]interface{}{
		"column":    col,
		"direction": dir.String(),
		"value":     snap.Value,
	})
	if mc.events != nil {
		mc.events.Publish(eventbus.Event{
			Type: eventbus.ColumnChanged,
			Data: map[string]interface{}{
				"column":    col,
				"direction": dir.String(),
				"value":     snap.Value,
			},
		})
	}
}

func (mc *MainController) startRun(dir odometer.Direction) {
	// Mark running first: a short run may finish before Start returns.
	p := mc.getPresenter()
	p.SetRunning(true)

	if _, err := mc.runService.Start(mc.ctx, dir, mc); err != nil {
		if errors.Is(err, models.ErrRunInProgress) {
			mc.logger.Debug("Controller", "run trigger ignored, run in progress", map[string]interface{}{
				"direction": dir.String(),
			})
			return
		}
		p.SetRunning(false)
		mc.handleError("Run failed", err)
	}
}

func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error("Controller", err, map[string]interface{}{"title": title})
	mc.getPresenter().ShowError(title, err)
}

func (mc *MainController) getPresenter() Presenter {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.presenter
}

type nopPresenter struct{}

func (nopPresenter) ShowDigits([odometer.Columns]int) {}
func (nopPresenter) ShowTotals(string)                {}
func (nopPresenter) SetRunning(bool)                  {}
func (nopPresenter) ShowError(string, error)          {}
