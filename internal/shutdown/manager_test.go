package shutdown

import (
	"testing"
	"time"

	"odometer/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestShutdownReverseOrder(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})

	var order []string
	m.Register(Func(func() { order = append(order, "view") }))
	m.Register(Func(func() { order = append(order, "run service") }))
	m.Register(Func(func() { order = append(order, "controller") }))

	m.Shutdown()

	assert.Equal(t, []string{"controller", "run service", "view"}, order)

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownRunsOnce(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})

	calls := 0
	m.Register(Func(func() { calls++ }))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, 1, calls)
}

func TestShutdownComponentTimeout(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})
	m.SetTimeout(10 * time.Millisecond)

	block := make(chan struct{})
	defer close(block)

	reached := false
	m.Register(Func(func() { reached = true }))
	m.Register(Func(func() { <-block }))

	start := time.Now()
	m.Shutdown()

	assert.True(t, reached)
	assert.Less(t, time.Since(start), time.Second)
}
