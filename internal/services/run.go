package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"odometer/internal/config"
	"odometer/internal/debug/eventbus"
	"odometer/internal/debug/timing"
	"odometer/internal/logger"
	"odometer/internal/models"
	"odometer/internal/odometer"

	"github.com/google/uuid"
)

// RunObserver receives progress from a run. Calls arrive on the run's
// goroutine.
type RunObserver interface {
	OnRunTick(snapshot models.Snapshot)
	OnRunFinished(result RunResult)
}

type EventPublisher interface {
	Publish(event eventbus.Event)
}

// RunResult summarises a finished or cancelled run
type RunResult struct {
	ID        string
	Direction odometer.Direction
	Ticks     int
	Duration  time.Duration
	Cancelled bool
	Snapshot  models.Snapshot
}

// RunStats aggregates every run since startup
type RunStats struct {
	TotalRuns     int
	CompletedRuns int
	CancelledRuns int
	TotalTicks    int64
	LastRun       RunResult
}

// RunService drives run-up and run-down sequences over the odometer
// repository, one tick per interval.
type RunService struct {
	repo         *models.OdometerRepository
	upInterval   time.Duration
	downInterval time.Duration
	logger       logger.Logger
	events       EventPublisher
	timing       *timing.Tracker

	mu       sync.Mutex
	activeID string
	cancel   context.CancelFunc
	done     chan struct{}
	stats    RunStats
}

func NewRunService(
	repo *models.OdometerRepository,
	cfg config.Config,
	log logger.Logger,
	events EventPublisher,
	tracker *timing.Tracker,
) *RunService {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	if tracker == nil {
		tracker = timing.NewTracker(events)
	}

	return &RunService{
		repo:         repo,
		upInterval:   cfg.UpInterval,
		downInterval: cfg.DownInterval,
		logger:       log,
		events:       events,
		timing:       tracker,
	}
}

// Start launches a run in the background and returns its ID
func (rs *RunService) Start(ctx context.Context, dir odometer.Direction, observer RunObserver) (string, error) {
	id, runCtx, err := rs.begin(ctx, dir)
	if err != nil {
		return "", err
	}

	rs.mu.Lock()
	done := rs.done
	rs.mu.Unlock()

	go func() {
		defer close(done)
		rs.execute(runCtx, id, dir, observer)
	}()

	return id, nil
}

// Run performs a whole run on the calling goroutine
func (rs *RunService) Run(ctx context.Context, dir odometer.Direction, observer RunObserver) (RunResult, error) {
	id, runCtx, err := rs.begin(ctx, dir)
	if err != nil {
		return RunResult{}, err
	}

	rs.mu.Lock()
	done := rs.done
	rs.mu.Unlock()
	defer close(done)

	return rs.execute(runCtx, id, dir, observer), nil
}

// Cancel stops the active run, leaving the chain where it is
func (rs *RunService) Cancel() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cancel == nil {
		return models.ErrNoRunActive
	}
	rs.cancel()
	return nil
}

// Wait blocks until the active run, if any, has finished
func (rs *RunService) Wait() {
	rs.mu.Lock()
	done := rs.done
	rs.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (rs *RunService) IsRunning() bool {
	return rs.repo.IsRunning()
}

func (rs *RunService) GetRunStats() RunStats {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.stats
}

// Shutdown cancels the active run and waits for it
func (rs *RunService) Shutdown() {
	_ = rs.Cancel()
	rs.Wait()
}

func (rs *RunService) begin(ctx context.Context, dir odometer.Direction) (string, context.Context, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	id := uuid.NewString()
	if _, err := rs.repo.StartRun(id, dir); err != nil {
		return "", nil, fmt.Errorf("start run %s: %w", dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	rs.activeID = id
	rs.cancel = cancel
	rs.done = make(chan struct{})

	return id, runCtx, nil
}

func (rs *RunService) execute(ctx context.Context, id string, dir odometer.Direction, observer RunObserver) RunResult {
	interval := rs.intervalFor(dir)
	start := time.Now()
	timingCtx := rs.timing.StartTiming(ctx, "run_"+dir.String())

	rs.logger.Info("RunService", "run started", map[string]interface{}{
		"run_id":    id,
		"direction": dir.String(),
		"interval":  interval.String(),
	})
	rs.publish(eventbus.RunStarted, map[string]interface{}{
		"run_id":    id,
		"direction": dir.String(),
	})

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	cancelled := false

	// Places are visited most significant first; every tick drives the
	// least significant cell and carries do the rest.
places:
	for place := odometer.Columns - 1; place >= 0; place-- {
		for {
			if ctx.Err() != nil {
				cancelled = true
				break places
			}

			snapshot, advanced, err := rs.repo.RunStep(place)
			if err != nil {
				rs.logger.Error("RunService", err, map[string]interface{}{"run_id": id, "place": place})
				cancelled = true
				break places
			}
			if !advanced {
				break
			}

			if observer != nil {
				observer.OnRunTick(snapshot)
			}

			if !waitTick(ctx, ticker) {
				cancelled = true
				break places
			}
		}
	}

	var snapshot models.Snapshot
	if cancelled {
		snapshot = rs.repo.CancelRun()
	} else {
		snapshot = rs.repo.CompleteRun()
	}
	rs.timing.EndTiming(timingCtx)

	result := RunResult{
		ID:        id,
		Direction: dir,
		Ticks:     snapshot.Run.Ticks,
		Duration:  time.Since(start),
		Cancelled: cancelled,
		Snapshot:  snapshot,
	}

	rs.finish(result)

	if observer != nil {
		observer.OnRunFinished(result)
	}

	return result
}

func (rs *RunService) finish(result RunResult) {
	rs.mu.Lock()
	rs.stats.TotalRuns++
	rs.stats.TotalTicks += int64(result.Ticks)
	if result.Cancelled {
		rs.stats.CancelledRuns++
	} else {
		rs.stats.CompletedRuns++
	}
	rs.stats.LastRun = result
	if rs.activeID == result.ID {
		rs.cancel()
		rs.cancel = nil
		rs.activeID = ""
	}
	rs.mu.Unlock()

	fields := map[string]interface{}{
		"run_id":    result.ID,
		"direction": result.Direction.String(),
		"ticks":     result.Ticks,
		"duration":  result.Duration.String(),
		"value":     result.Snapshot.Value,
	}

	if result.Cancelled {
		rs.logger.Info("RunService", "run cancelled", fields)
		rs.publish(eventbus.RunCancelled, fields)
		return
	}
	rs.logger.Info("RunService", "run completed", fields)
	rs.publish(eventbus.RunCompleted, fields)
}

func (rs *RunService) intervalFor(dir odometer.Direction) time.Duration {
	if dir == odometer.Down {
		return rs.downInterval
	}
	return rs.upInterval
}

func (rs *RunService) publish(eventType string, data map[string]interface{}) {
	if rs.events == nil {
		return
	}
	rs.events.Publish(eventbus.Event{Type: eventType, Data: data})
}

// waitTick pauses until the next tick. A nil ticker only checks ctx.
func waitTick(ctx context.Context, ticker *time.Ticker) bool {
	if ticker == nil {
		return ctx.Err() == nil
	}

	select {
	case <-ticker.C:
		return true
	case <-ctx.Done():
		return false
	}
}
