package mailer

import (
	"log/slog"
	"sync"
)

// Dispatcher delivers best-effort notifications off the request path. Enqueue
// never blocks: when the queue is full the message is dropped and logged.
type Dispatcher struct {
	mailer Mailer
	queue  chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(m Mailer, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		mailer: m,
		queue:  make(chan Message, size),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.mailer.Send(msg.To, msg.Subject, msg.Body); err != nil {
			slog.Error("notification delivery failed", "action", "notify", "subject", msg.Subject, "error", err)
		}
	}
}

// Enqueue reports whether msg was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Error("notification dropped, dispatcher stopped", "action", "notify", "subject", msg.Subject)
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		slog.Error("notification dropped, queue full", "action", "notify", "subject", msg.Subject)
		return false
	}
}

// Stop delivers whatever is queued and waits for the worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
