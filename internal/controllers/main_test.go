package controllers

import (
	"context"
	"sync"
	"testing"
	"time"

	"odometer/internal/config"
	"odometer/internal/logger"
	"odometer/internal/models"
	"odometer/internal/odometer"
	"odometer/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresenter struct {
	mu      sync.Mutex
	digits  [odometer.Columns]int
	totals  []string
	running bool
	errors  []error
}

func (p *recordingPresenter) ShowDigits(digits [odometer.Columns]int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.digits = digits
}

func (p *recordingPresenter) ShowTotals(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals = append(p.totals, text)
}

func (p *recordingPresenter) SetRunning(running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = running
}

func (p *recordingPresenter) ShowError(title string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, err)
}

func (p *recordingPresenter) lastTotals() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.totals) == 0 {
		return ""
	}
	return p.totals[len(p.totals)-1]
}

func (p *recordingPresenter) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func newTestController(t *testing.T, cfg config.Config) (*MainController, *recordingPresenter, *models.OdometerRepository) {
	t.Helper()
	repo := models.NewOdometerRepository()
	runService := services.NewRunService(repo, cfg, logger.NoOpLogger{}, nil, nil)
	mc := NewMainController(context.Background(), repo, runService, logger.NoOpLogger{}, nil)

	p := &recordingPresenter{}
	mc.SetPresenter(p)
	t.Cleanup(mc.Shutdown)
	return mc, p, repo
}

func instantConfig() config.Config {
	cfg := config.Default()
	cfg.UpInterval = 0
	cfg.DownInterval = 0
	return cfg
}

func TestSetPresenterPushesState(t *testing.T) {
	_, p, _ := newTestController(t, instantConfig())

	assert.Equal(t, []string{"0 + 0 + 0 + 0 + 0 + 0"}, p.totals)
	assert.False(t, p.running)
}

func TestColumnIncrementShowsWorkingThenBreakdown(t *testing.T) {
	mc, p, _ := newTestController(t, instantConfig())

	mc.OnColumnIncrement(2)

	assert.Equal(t, [odometer.Columns]int{0, 0, 1, 0, 0, 0}, p.digits)
	require.Len(t, p.totals, 3)
	assert.Equal(t, odometer.StatusWorking, p.totals[1])
	assert.Equal(t, "0 + 0 + 0 + 100 + 0 + 0", p.totals[2])
}

func TestColumnDecrementBorrows(t *testing.T) {
	mc, p, _ := newTestController(t, instantConfig())

	mc.OnColumnDecrement(0)

	assert.Equal(t, [odometer.Columns]int{9, 9, 9, 9, 9, 9}, p.digits)
	assert.Equal(t, "900000 + 90000 + 9000 + 900 + 90 + 9", p.lastTotals())
	assert.Equal(t, 999999, mc.repo.GetSnapshot().Value)
}

func TestColumnOutOfRangeReportsError(t *testing.T) {
	mc, p, _ := newTestController(t, instantConfig())

	mc.OnColumnIncrement(odometer.Columns)

	require.Len(t, p.errors, 1)
	assert.ErrorIs(t, p.errors[0], odometer.ErrColumnOutOfRange)
}

func TestRunUpReportsDone(t *testing.T) {
	mc, p, _ := newTestController(t, instantConfig())

	mc.OnRunUp()
	mc.runService.Wait()

	assert.Equal(t, odometer.StatusDone, p.lastTotals())
	assert.Equal(t, [odometer.Columns]int{9, 9, 9, 9, 9, 9}, p.digits)
	assert.False(t, p.isRunning())
	assert.Equal(t, models.Done, mc.repo.GetSnapshot().State)
}

func TestTriggersIgnoredDuringRun(t *testing.T) {
	cfg := config.Default()
	cfg.DownInterval = time.Hour
	mc, p, repo := newTestController(t, cfg)
	_, err := repo.SetValue(50)
	require.NoError(t, err)

	mc.OnRunDown()
	require.Eventually(t, func() bool { return repo.GetSnapshot().Value == 49 }, 2*time.Second, time.Millisecond)
	assert.True(t, p.isRunning())

	mc.OnColumnIncrement(0)
	mc.OnRunUp()
	assert.Equal(t, 49, repo.GetSnapshot().Value)
	assert.Equal(t, models.RunningDown, repo.GetSnapshot().State)

	mc.OnCancelRun()
	mc.runService.Wait()

	assert.False(t, p.isRunning())
	assert.Equal(t, "0 + 0 + 0 + 0 + 40 + 9", p.lastTotals())
	assert.Empty(t, p.errors)
}

func TestCancelWithoutRunIsQuiet(t *testing.T) {
	mc, p, _ := newTestController(t, instantConfig())

	mc.OnCancelRun()
	assert.Empty(t, p.errors)
}
