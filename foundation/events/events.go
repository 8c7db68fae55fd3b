// Package events allows clients to register for and receive the per-node
// results of each simulation round as they happen.
package events

import (
	"fmt"
	"sync"
)

// Event carries one node's observable state at the end of a round.
type Event struct {
	Round  int    `json:"round"`
	NodeID int    `json:"node_id"`
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
}

// =============================================================================

// Events maintains a mapping of unique ids and channels so goroutines can
// register and receive events.
type Events struct {
	m  map[string]chan Event
	mu sync.RWMutex
}

// New constructs an events value for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan Event),
	}
}

// Shutdown closes and removes all channels that were provided by calls to
// Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. Calling Acquire a second time with the same id returns
// the existing channel.
func (evt *Events) Acquire(id string) chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// Since an event is dropped when a receiver is not ready, this buffer
	// gives each subscriber room to fall behind briefly without losing
	// anything. Websocket sends can take long.
	const eventBuffer = 100

	evt.m[id] = make(chan Event, eventBuffer)

	return evt.m[id]
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Send delivers the event to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(event Event) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- event:
		default:
		}
	}
}
