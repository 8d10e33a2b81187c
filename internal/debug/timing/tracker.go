package timing

import (
	"context"
	"sync"
	"time"

	"odometer/internal/debug/eventbus"
)

const (
	TimingStarted   = "timing_started"
	TimingCompleted = "timing_completed"
)

type timingKey struct{}

type EventPublisher interface {
	Publish(event eventbus.Event)
}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Tracker records how long named operations take
type Tracker struct {
	timings  map[string][]time.Duration
	mu       sync.RWMutex
	eventBus EventPublisher
}

func NewTracker(eventBus EventPublisher) *Tracker {
	return &Tracker{
		timings:  make(map[string][]time.Duration),
		eventBus: eventBus,
	}
}

// StartTiming returns a child of ctx carrying the operation's start time
func (tt *Tracker) StartTiming(ctx context.Context, operation string) context.Context {
	start := time.Now()
	ctx = context.WithValue(ctx, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: start,
	})

	if tt.eventBus != nil {
		tt.eventBus.Publish(eventbus.Event{
			Type: TimingStarted,
			Data: map[string]interface{}{
				"operation": operation,
				"start":     start,
			},
		})
	}

	return ctx
}

// EndTiming records the elapsed time for the operation started on ctx
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := time.Since(info.StartTime)

	tt.mu.Lock()
	tt.timings[info.Operation] = append(tt.timings[info.Operation], duration)
	tt.mu.Unlock()

	if tt.eventBus != nil {
		tt.eventBus.Publish(eventbus.Event{
			Type: TimingCompleted,
			Data: map[string]interface{}{
				"operation": info.Operation,
				"duration":  duration,
			},
		})
	}

	return duration
}

func (tt *Tracker) timingsFor(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

// Stats summarises the recorded durations of one operation
type Stats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
}

func (tt *Tracker) Summary(operation string) Stats {
	timings := tt.timingsFor(operation)
	if len(timings) == 0 {
		return Stats{}
	}

	stats := Stats{Count: len(timings), Min: timings[0], Max: timings[0]}
	for _, d := range timings {
		stats.Total += d
		stats.Min = min(stats.Min, d)
		stats.Max = max(stats.Max, d)
	}
	stats.Average = stats.Total / time.Duration(stats.Count)
	return stats
}
