// Package events implements the in-process OrchestratorEvent bus: a
// buffered channel with a single consumer goroutine, per spec.md §9's
// event-stream design note. No teacher precedent (the teacher has no
// event bus) — built to spec in the teacher's plain-channel concurrency
// idiom, no generics-heavy abstractions.
package events

import (
	"sync"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

const defaultBufferSize = 256

// Bus is a buffered-channel implementation of ports.EventBus. phase,
// service, and error events always block-send (never dropped); output
// events are dropped under backpressure via a non-blocking send, per
// spec.md §9's backpressure policy.
type Bus struct {
	ch   chan ports.OrchestratorEvent
	done chan struct{}

	mu       sync.RWMutex
	listener ports.Listener
}

// New starts the consumer goroutine immediately; Subscribe may be called
// before or after any Publish call, but events the consumer takes off the
// channel while no listener is attached are discarded.
func New() *Bus {
	b := &Bus{
		ch:   make(chan ports.OrchestratorEvent, defaultBufferSize),
		done: make(chan struct{}),
	}
	go b.consume()
	return b
}

func (b *Bus) consume() {
	defer close(b.done)
	for evt := range b.ch {
		b.mu.RLock()
		l := b.listener
		b.mu.RUnlock()
		if l != nil {
			l(evt)
		}
	}
}

func (b *Bus) Subscribe(l ports.Listener) {
	b.mu.Lock()
	b.listener = l
	b.mu.Unlock()
}

// Publish sends an event onto the bus. output events are subject to a
// non-blocking send and may be dropped when the buffer is full; every
// other kind always blocks until there is room.
func (b *Bus) Publish(evt ports.OrchestratorEvent) {
	if evt.Kind == ports.EventOutput {
		select {
		case b.ch <- evt:
		default:
		}
		return
	}
	b.ch <- evt
}

// Close stops accepting events and waits for the consumer to drain.
func (b *Bus) Close() {
	close(b.ch)
	<-b.done
}
