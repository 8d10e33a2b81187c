package models

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"odometer/internal/odometer"
)

var (
	ErrRunInProgress = errors.New("run already in progress")
	ErrNoRunActive   = errors.New("no run active")
)

// RunState is the run controller's state
type RunState int

const (
	Idle RunState = iota
	RunningUp
	RunningDown
	Done
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case RunningUp:
		return "running up"
	case RunningDown:
		return "running down"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Running reports whether the state belongs to an active run
func (s RunState) Running() bool {
	return s == RunningUp || s == RunningDown
}

// RunInfo describes the active or most recent run
type RunInfo struct {
	ID        string
	Direction odometer.Direction
	StartTime time.Time
	Ticks     int
}

// Snapshot is a consistent copy of the odometer for presentation
type Snapshot struct {
	Digits [odometer.Columns]int
	Value  int
	Totals string
	State  RunState
	Run    RunInfo
}

// OdometerRepository owns the digit chain, the totals text and the run state
type OdometerRepository struct {
	mu     sync.RWMutex
	chain  *odometer.Chain
	totals string
	state  RunState
	run    RunInfo
}

func NewOdometerRepository() *OdometerRepository {
	chain := odometer.NewChain()
	return &OdometerRepository{
		chain:  chain,
		totals: chain.Breakdown(),
		state:  Idle,
	}
}

// GetSnapshot returns the current state
func (r *OdometerRepository) GetSnapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// StepColumn applies one manual tick to col and marks the totals stale.
// Manual steps are refused while a run owns the chain.
func (r *OdometerRepository) StepColumn(col int, dir odometer.Direction) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Running() {
		return r.snapshotLocked(), ErrRunInProgress
	}
	if err := r.chain.Step(col, dir); err != nil {
		return r.snapshotLocked(), fmt.Errorf("step column %s: %w", dir, err)
	}

	r.totals = odometer.StatusWorking
	return r.snapshotLocked(), nil
}

// RefreshTotals recomputes the breakdown text
func (r *OdometerRepository) RefreshTotals() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totals = r.chain.Breakdown()
	return r.snapshotLocked()
}

// SetValue loads n into the chain while no run is active
func (r *OdometerRepository) SetValue(n int) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Running() {
		return r.snapshotLocked(), ErrRunInProgress
	}
	r.chain.Set(n)
	r.totals = r.chain.Breakdown()
	return r.snapshotLocked(), nil
}

// StartRun moves the state machine into a running state
func (r *OdometerRepository) StartRun(id string, dir odometer.Direction) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Running() {
		return r.snapshotLocked(), ErrRunInProgress
	}

	r.state = RunningUp
	if dir == odometer.Down {
		r.state = RunningDown
	}
	r.run = RunInfo{
		ID:        id,
		Direction: dir,
		StartTime: time.Now(),
	}
	return r.snapshotLocked(), nil
}

// RunStep performs one tick of the active run for place. It reports false,
// without touching the chain, once place holds the run's terminal digit.
func (r *OdometerRepository) RunStep(place int) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.Running() {
		return r.snapshotLocked(), false, ErrNoRunActive
	}

	digit, err := r.chain.Digit(place)
	if err != nil {
		return r.snapshotLocked(), false, err
	}
	if digit == r.run.Direction.Terminal() {
		return r.snapshotLocked(), false, nil
	}

	if err := r.chain.Step(0, r.run.Direction); err != nil {
		return r.snapshotLocked(), false, err
	}
	r.run.Ticks++
	r.totals = odometer.StatusWorking
	return r.snapshotLocked(), true, nil
}

// CompleteRun marks the run finished and shows the done marker
func (r *OdometerRepository) CompleteRun() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Done
	r.totals = odometer.StatusDone
	return r.snapshotLocked()
}

// CancelRun stops the run where it is and restores the breakdown
func (r *OdometerRepository) CancelRun() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Idle
	r.totals = r.chain.Breakdown()
	return r.snapshotLocked()
}

func (r *OdometerRepository) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Running()
}

func (r *OdometerRepository) snapshotLocked() Snapshot {
	return Snapshot{
		Digits: r.chain.Digits(),
		Value:  r.chain.Value(),
		Totals: r.totals,
		State:  r.state,
		Run:    r.run,
	}
}
