package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"odometer/internal/config"
	"odometer/internal/debug/eventbus"
	"odometer/internal/logger"
	"odometer/internal/models"
	"odometer/internal/odometer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	ticks    atomic.Int64
	last     atomic.Value
	finished chan RunResult
}

func newCountingObserver() *countingObserver {
	return &countingObserver{finished: make(chan RunResult, 1)}
}

func (o *countingObserver) OnRunTick(snapshot models.Snapshot) {
	o.ticks.Add(1)
	o.last.Store(snapshot)
}

func (o *countingObserver) OnRunFinished(result RunResult) {
	o.finished <- result
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordingPublisher) Publish(event eventbus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func instantConfig() config.Config {
	cfg := config.Default()
	cfg.UpInterval = 0
	cfg.DownInterval = 0
	return cfg
}

func newTestService(t *testing.T, cfg config.Config) (*RunService, *models.OdometerRepository, *recordingPublisher) {
	t.Helper()
	repo := models.NewOdometerRepository()
	pub := &recordingPublisher{}
	return NewRunService(repo, cfg, logger.NoOpLogger{}, pub, nil), repo, pub
}

func TestRunUpFromZero(t *testing.T) {
	svc, repo, pub := newTestService(t, instantConfig())
	observer := newCountingObserver()

	result, err := svc.Run(context.Background(), odometer.Up, observer)
	require.NoError(t, err)

	assert.False(t, result.Cancelled)
	assert.Equal(t, 999999, result.Ticks)
	assert.EqualValues(t, 999999, observer.ticks.Load())
	assert.Equal(t, 999999, result.Snapshot.Value)
	assert.Equal(t, odometer.StatusDone, result.Snapshot.Totals)
	assert.Equal(t, models.Done, result.Snapshot.State)
	assert.Equal(t, [odometer.Columns]int{9, 9, 9, 9, 9, 9}, repo.GetSnapshot().Digits)

	last := observer.last.Load().(models.Snapshot)
	assert.Equal(t, odometer.StatusWorking, last.Totals)

	assert.Contains(t, pub.types(), eventbus.RunStarted)
	assert.Contains(t, pub.types(), eventbus.RunCompleted)

	stats := svc.GetRunStats()
	assert.Equal(t, 1, stats.CompletedRuns)
	assert.EqualValues(t, 999999, stats.TotalTicks)
}

func TestRunDownFromTop(t *testing.T) {
	svc, repo, _ := newTestService(t, instantConfig())
	_, err := repo.SetValue(999999)
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), odometer.Down, nil)
	require.NoError(t, err)

	assert.Equal(t, 999999, result.Ticks)
	assert.Equal(t, 0, result.Snapshot.Value)
	assert.Equal(t, odometer.StatusDone, result.Snapshot.Totals)
}

func TestRunFromMidValue(t *testing.T) {
	tests := []struct {
		name  string
		start int
		dir   odometer.Direction
		ticks int
		end   int
	}{
		{"up from 123456", 123456, odometer.Up, 999999 - 123456, 999999},
		{"up from 950000", 950000, odometer.Up, 49999, 999999},
		{"up already terminal", 999999, odometer.Up, 0, 999999},
		{"down from 1000", 1000, odometer.Down, 1000, 0},
		{"down already terminal", 0, odometer.Down, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t, instantConfig())
			_, err := repo.SetValue(tt.start)
			require.NoError(t, err)

			result, err := svc.Run(context.Background(), tt.dir, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.ticks, result.Ticks)
			assert.Equal(t, tt.end, result.Snapshot.Value)
			assert.Equal(t, odometer.StatusDone, result.Snapshot.Totals)
		})
	}
}

func TestSecondRunRejected(t *testing.T) {
	cfg := config.Default()
	cfg.UpInterval = time.Hour
	svc, repo, pub := newTestService(t, cfg)
	observer := newCountingObserver()

	id, err := svc.Start(context.Background(), odometer.Up, observer)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = svc.Start(context.Background(), odometer.Down, nil)
	assert.ErrorIs(t, err, models.ErrRunInProgress)

	require.Eventually(t, func() bool { return observer.ticks.Load() == 1 }, 2*time.Second, time.Millisecond)
	require.NoError(t, svc.Cancel())

	select {
	case result := <-observer.finished:
		assert.True(t, result.Cancelled)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, 1, result.Ticks)
		assert.Equal(t, 1, result.Snapshot.Value)
		assert.Equal(t, models.Idle, result.Snapshot.State)
		assert.Equal(t, "0 + 0 + 0 + 0 + 0 + 1", result.Snapshot.Totals)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish after cancel")
	}

	svc.Wait()
	assert.False(t, repo.IsRunning())
	assert.ErrorIs(t, svc.Cancel(), models.ErrNoRunActive)
	assert.Contains(t, pub.types(), eventbus.RunCancelled)
	assert.Equal(t, 1, svc.GetRunStats().CancelledRuns)
}

func TestParentContextCancelsRun(t *testing.T) {
	cfg := config.Default()
	cfg.DownInterval = time.Hour
	svc, repo, _ := newTestService(t, cfg)
	_, err := repo.SetValue(500)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = svc.Start(ctx, odometer.Down, nil)
	require.NoError(t, err)

	cancel()
	svc.Wait()

	snap := repo.GetSnapshot()
	assert.Equal(t, models.Idle, snap.State)
	assert.LessOrEqual(t, snap.Value, 500)
}

func TestShutdownWithoutRun(t *testing.T) {
	svc, _, _ := newTestService(t, instantConfig())
	assert.NotPanics(t, svc.Shutdown)
}

func TestRunAfterDoneStartsAgain(t *testing.T) {
	svc, repo, _ := newTestService(t, instantConfig())

	_, err := svc.Run(context.Background(), odometer.Up, nil)
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), odometer.Down, nil)
	require.NoError(t, err)
	assert.Equal(t, 999999, result.Ticks)
	assert.Equal(t, 0, repo.GetSnapshot().Value)
	assert.Equal(t, 2, svc.GetRunStats().TotalRuns)
}
