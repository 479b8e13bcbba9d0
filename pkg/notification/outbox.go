package notification

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

const DefaultOutboxSize = 32

var (
	ErrOutboxFull   = errors.New("outbox full, event dropped")
	ErrOutboxClosed = errors.New("outbox closed")
)

// Outbox queues events for one connection and writes them from a single
// goroutine, so a slow client never blocks the publisher.
type Outbox struct {
	queue     chan Event
	write     func(Event) error
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewOutbox(size int, write func(Event) error) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	o := &Outbox{
		queue:   make(chan Event, size),
		write:   write,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Outbox) run() {
	defer close(o.stopped)
	for {
		select {
		case <-o.done:
			return
		case ev := <-o.queue:
			if err := o.write(ev); err != nil {
				log.Warnw("notification write failed", "event", ev.Name, "error", err)
			}
		}
	}
}

// Send enqueues ev without blocking.
func (o *Outbox) Send(ev Event) error {
	select {
	case <-o.done:
		return ErrOutboxClosed
	default:
	}

	select {
	case o.queue <- ev:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Close stops the writer and waits for an in-flight write to finish.
// Queued events are discarded.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() { close(o.done) })
	<-o.stopped
}
