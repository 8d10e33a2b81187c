package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"odometer/internal/logger"
)

// Odometer event types
const (
	ColumnChanged = "column_changed"
	RunStarted    = "run_started"
	RunCompleted  = "run_completed"
	RunCancelled  = "run_cancelled"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type EventHandler interface {
	Handle(event Event)
	GetID() string
}

// HandlerFunc adapts a function to EventHandler
type HandlerFunc struct {
	ID string
	Fn func(Event)
}

func (h HandlerFunc) Handle(event Event) { h.Fn(event) }
func (h HandlerFunc) GetID() string     { return h.ID }

// Bus delivers events to subscribers off the publishing goroutine. A single
// worker calls the subscribers one after another, so every subscriber sees
// events in publish order. Publish never blocks: events are dropped while
// the buffer is full.
type Bus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	buffer      chan Event
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	dropped     int64
	droppedMu   sync.Mutex
	logger      logger.Logger
}

func NewBus(bufferSize int, log logger.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.NoOpLogger{}
	}

	bus := &Bus{
		subscribers: make(map[string][]EventHandler),
		buffer:      make(chan Event, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
		logger:      log,
	}

	bus.startWorker()
	return bus
}

func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.ctx.Done():
		return
	default:
	}

	select {
	case b.buffer <- event:
	default:
		b.droppedMu.Lock()
		b.dropped++
		b.droppedMu.Unlock()
	}
}

func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.GetID() == handler.GetID() {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
}

// Dropped returns how many events were discarded on a full buffer
func (b *Bus) Dropped() int64 {
	b.droppedMu.Lock()
	defer b.droppedMu.Unlock()
	return b.dropped
}

// Shutdown stops the worker after draining queued events
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatchEvent(event)
			case <-b.ctx.Done():
				b.drain()
				return
			}
		}
	}()
}

func (b *Bus) drain() {
	for {
		select {
		case event := <-b.buffer:
			b.dispatchEvent(event)
		default:
			return
		}
	}
}

func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

// deliver isolates the other subscribers from a panicking one
func (b *Bus) deliver(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("EventBus", fmt.Errorf("subscriber panicked: %v", r), map[string]interface{}{
				"event_type": event.Type,
				"handler":    handler.GetID(),
			})
		}
	}()
	handler.Handle(event)
}
