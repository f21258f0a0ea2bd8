package session

import (
	"sync"

	"blockdrop/tetris"
)

// Broadcaster fans snapshots out to subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan *tetris.Snapshot]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan *tetris.Snapshot]struct{})}
}

// Subscribe registers a new subscriber and returns its channel. Subscribing
// to a closed broadcaster returns a closed channel.
func (b *Broadcaster) Subscribe() chan *tetris.Snapshot {
	ch := make(chan *tetris.Snapshot, 10)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan *tetris.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers a snapshot to every subscriber.
func (b *Broadcaster) Publish(s *tetris.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
			// drop if the subscriber is lagging, the next snapshot has the full state anyway.
		}
	}
}

// Close closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	b.closed = true
}
