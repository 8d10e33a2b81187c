package timing

import (
	"context"
	"sync"
	"testing"
	"time"

	"odometer/internal/debug/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordingPublisher) Publish(event eventbus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestStartEndTiming(t *testing.T) {
	pub := &recordingPublisher{}
	tracker := NewTracker(pub)

	ctx := tracker.StartTiming(context.Background(), "run_up")
	time.Sleep(2 * time.Millisecond)
	d := tracker.EndTiming(ctx)

	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	stats := tracker.Summary("run_up")
	require.Equal(t, 1, stats.Count)
	assert.Equal(t, d, stats.Max)
	assert.Equal(t, d, stats.Average)

	require.Len(t, pub.events, 2)
	assert.Equal(t, TimingStarted, pub.events[0].Type)
	assert.Equal(t, TimingCompleted, pub.events[1].Type)
	assert.Equal(t, "run_up", pub.events[1].Data["operation"])
}

func TestEndTimingWithoutStart(t *testing.T) {
	tracker := NewTracker(nil)
	assert.Zero(t, tracker.EndTiming(context.Background()))
	assert.Zero(t, tracker.Summary("run_up").Count)
}

func TestSummaryKeepsOperationsApart(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.EndTiming(tracker.StartTiming(context.Background(), "run_up"))
	tracker.EndTiming(tracker.StartTiming(context.Background(), "run_up"))
	tracker.EndTiming(tracker.StartTiming(context.Background(), "run_down"))

	assert.Equal(t, 2, tracker.Summary("run_up").Count)
	assert.Equal(t, 1, tracker.Summary("run_down").Count)
}

func TestSummary(t *testing.T) {
	tracker := NewTracker(nil)
	assert.Equal(t, Stats{}, tracker.Summary("run_up"))

	for _, d := range []time.Duration{time.Millisecond, 3 * time.Millisecond} {
		ctx := context.WithValue(context.Background(), timingKey{}, TimingInfo{
			Operation: "run_up",
			StartTime: time.Now().Add(-d),
		})
		tracker.EndTiming(ctx)
	}

	stats := tracker.Summary("run_up")
	assert.Equal(t, 2, stats.Count)
	assert.GreaterOrEqual(t, stats.Min, time.Millisecond)
	assert.GreaterOrEqual(t, stats.Max, 3*time.Millisecond)
	assert.LessOrEqual(t, stats.Min, stats.Average)
	assert.LessOrEqual(t, stats.Average, stats.Max)
	assert.Equal(t, stats.Total/2, stats.Average)
}
