package tui

import (
	"context"
	"sync"

	"odometer/internal/controllers"
	"odometer/internal/odometer"

	tea "github.com/charmbracelet/bubbletea"
)

// Presenter turns controller output into bubbletea messages. Messages are
// queued until a program is attached and then delivered in order. After
// Detach every message is dropped.
type Presenter struct {
	msgs       chan tea.Msg
	done       chan struct{}
	attachOnce sync.Once
	detachOnce sync.Once
}

var _ controllers.Presenter = (*Presenter)(nil)

func NewPresenter(buffer int) *Presenter {
	return &Presenter{
		msgs: make(chan tea.Msg, buffer),
		done: make(chan struct{}),
	}
}

func (p *Presenter) ShowDigits(digits [odometer.Columns]int) {
	p.send(DigitsMsg{Digits: digits})
}

func (p *Presenter) ShowTotals(text string) {
	p.send(TotalsMsg{Text: text})
}

func (p *Presenter) SetRunning(running bool) {
	p.send(RunningMsg{Running: running})
}

func (p *Presenter) ShowError(title string, err error) {
	p.send(ErrorMsg{Title: title, Err: err})
}

func (p *Presenter) send(msg tea.Msg) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.msgs <- msg:
	case <-p.done:
	}
}

// Attach starts delivering queued messages to send. Delivery stops, and the
// presenter detaches, once ctx is done.
func (p *Presenter) Attach(ctx context.Context, send func(tea.Msg)) {
	p.attachOnce.Do(func() {
		go func() {
			for {
				select {
				case msg := <-p.msgs:
					send(msg)
				case <-ctx.Done():
					p.Detach()
					return
				case <-p.done:
					return
				}
			}
		}()
	})
}

// Detach releases blocked senders and drops later messages
func (p *Presenter) Detach() {
	p.detachOnce.Do(func() {
		close(p.done)
	})
}

// Dispatcher runs handler calls one at a time off the bubbletea event loop
type Dispatcher struct {
	actions chan func()
	done    chan struct{}
	once    sync.Once
}

func NewDispatcher(buffer int) *Dispatcher {
	d := &Dispatcher{
		actions: make(chan func(), buffer),
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

// Dispatch queues fn. It reports false, dropping fn, when the queue is full
// or the dispatcher is stopped.
func (d *Dispatcher) Dispatch(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.actions <- fn:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.done)
	})
}

func (d *Dispatcher) loop() {
	for {
		select {
		case fn := <-d.actions:
			fn()
		case <-d.done:
			return
		}
	}
}
