package coordinator

import (
	"sync"

	"github.com/google/uuid"
)

// Notification is published once per accepted action. SessionID identifies
// the session whose submission produced it, so receivers can suppress their
// own echoes.
type Notification struct {
	SessionID uuid.UUID
	Action    Action
}

// Broadcaster fans notifications out to independent subscribers. A
// subscription only sees notifications published after it was created, and a
// slow subscriber loses its oldest buffered notification rather than
// delaying the publisher or its peers.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// Subscription is one receiver on a broadcaster. Close releases it; the
// notification channel is closed afterwards.
type Subscription struct {
	b  *Broadcaster
	ch chan Notification
}

func NewBroadcaster(buffer int) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new receiver starting at the current position of the
// stream.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Subscription{b: b, ch: make(chan Notification, b.buffer)}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers n to every current subscriber. Each subscriber observes
// notifications in publish order. Publish never blocks: a full subscriber
// buffer has its oldest entry evicted to make room. Returns the number of
// evictions.
func (b *Broadcaster) Publish(n Notification) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for s := range b.subs {
		select {
		case s.ch <- n:
			continue
		default:
		}

		// Buffer full: evict the oldest entry. Only the subscriber also
		// receives from ch, so after one eviction the send cannot block.
		select {
		case <-s.ch:
			dropped++
		default:
		}
		select {
		case s.ch <- n:
		default:
		}
	}
	return dropped
}

// Notifications returns the receive side of the subscription.
func (s *Subscription) Notifications() <-chan Notification {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	if _, ok := s.b.subs[s]; !ok {
		return
	}
	delete(s.b.subs, s)
	close(s.ch)
}
