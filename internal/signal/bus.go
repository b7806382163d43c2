// Package signal carries the global identity-changed event from the sign-in surface to
// whoever waits on it.
package signal

import "sync"

// Event is a signal on the bus.
type Event struct {
	Name string `json:"name"`
	// Tab optionally narrows the event to one client tab.
	Tab string `json:"tab,omitempty"`
}

const IdentityChanged = "identity-changed"

// Bus fans events out to every live subscription.
type Bus interface {
	Publish(ev Event)
	Subscribe() *Subscription
}

// Subscription receives events until Close.
type Subscription struct {
	C     <-chan Event
	close func()
	once  sync.Once
}

// Close detaches the subscription and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// LocalBus is an in-process bus. Publish never blocks: a subscriber that still has an
// undelivered event keeps that one and the new one is dropped, since every event only
// says "look again".
type LocalBus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: map[int]chan Event{}}
}

func (b *LocalBus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *LocalBus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 1)
	b.subs[id] = ch
	return &Subscription{
		C: ch,
		close: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		},
	}
}
