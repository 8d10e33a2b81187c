package models

import (
	"testing"

	"odometer/internal/odometer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositoryShowsBreakdown(t *testing.T) {
	repo := NewOdometerRepository()
	snap := repo.GetSnapshot()

	assert.Equal(t, 0, snap.Value)
	assert.Equal(t, "0 + 0 + 0 + 0 + 0 + 0", snap.Totals)
	assert.Equal(t, Idle, snap.State)
}

func TestStepColumnMarksWorking(t *testing.T) {
	repo := NewOdometerRepository()

	snap, err := repo.StepColumn(0, odometer.Up)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Value)
	assert.Equal(t, odometer.StatusWorking, snap.Totals)

	snap = repo.RefreshTotals()
	assert.Equal(t, "0 + 0 + 0 + 0 + 0 + 1", snap.Totals)

	snap, err = repo.StepColumn(0, odometer.Down)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Value)
}

func TestStepColumnOutOfRange(t *testing.T) {
	repo := NewOdometerRepository()

	_, err := repo.StepColumn(odometer.Columns, odometer.Up)
	assert.ErrorIs(t, err, odometer.ErrColumnOutOfRange)
	assert.Equal(t, "0 + 0 + 0 + 0 + 0 + 0", repo.GetSnapshot().Totals)
}

func TestRunStateMachine(t *testing.T) {
	repo := NewOdometerRepository()

	snap, err := repo.StartRun("run-1", odometer.Up)
	require.NoError(t, err)
	assert.Equal(t, RunningUp, snap.State)
	assert.True(t, repo.IsRunning())

	_, err = repo.StartRun("run-2", odometer.Down)
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = repo.StepColumn(2, odometer.Up)
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = repo.SetValue(5)
	assert.ErrorIs(t, err, ErrRunInProgress)

	snap = repo.CompleteRun()
	assert.Equal(t, Done, snap.State)
	assert.Equal(t, odometer.StatusDone, snap.Totals)
	assert.False(t, repo.IsRunning())

	snap, err = repo.StartRun("run-3", odometer.Down)
	require.NoError(t, err)
	assert.Equal(t, RunningDown, snap.State)
	assert.Equal(t, "run-3", snap.Run.ID)

	snap = repo.CancelRun()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, "0 + 0 + 0 + 0 + 0 + 0", snap.Totals)
}

func TestRunStep(t *testing.T) {
	repo := NewOdometerRepository()

	_, _, err := repo.RunStep(0)
	assert.ErrorIs(t, err, ErrNoRunActive)

	_, err = repo.SetValue(7)
	require.NoError(t, err)
	_, err = repo.StartRun("r", odometer.Up)
	require.NoError(t, err)

	snap, advanced, err := repo.RunStep(0)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 8, snap.Value)
	assert.Equal(t, 1, snap.Run.Ticks)

	snap, advanced, err = repo.RunStep(0)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 9, snap.Value)

	snap, advanced, err = repo.RunStep(0)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 9, snap.Value)
	assert.Equal(t, 2, snap.Run.Ticks)
}

func TestRunStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running up", RunningUp.String())
	assert.Equal(t, "running down", RunningDown.String())
	assert.Equal(t, "done", Done.String())
	assert.False(t, Done.Running())
}
