package events

import (
	"slices"
	"sync"
)

// subscriptionBuffer is how many events a slow subscriber may lag behind
// before new events are dropped for it.
const subscriptionBuffer = 16

// Subscription receives the events of one user.
type Subscription struct {
	userID string
	C      chan Event
}

// Broker delivers events to the in-process subscribers of the owning user.
type Broker struct {
	mu       sync.Mutex
	sessions map[string][]*Subscription
}

func NewBroker() *Broker {
	return &Broker{sessions: make(map[string][]*Subscription)}
}

// Subscribe registers a new subscriber for userID.
func (b *Broker) Subscribe(userID string) *Subscription {
	s := &Subscription{userID: userID, C: make(chan Event, subscriptionBuffer)}

	b.mu.Lock()
	b.sessions[userID] = append(b.sessions[userID], s)
	b.mu.Unlock()
	return s
}

// Unsubscribe removes s. It is safe to call more than once.
func (b *Broker) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.sessions[s.userID]
	idx := slices.Index(subs, s)
	if idx == -1 {
		return
	}
	subs = slices.Delete(subs, idx, idx+1)
	if len(subs) == 0 {
		delete(b.sessions, s.userID)
	} else {
		b.sessions[s.userID] = subs
	}
}

// Subscribers reports how many subscribers userID has.
func (b *Broker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions[userID])
}

// Publish never blocks: a subscriber with a full buffer misses the event.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.sessions[e.UserID] {
		select {
		case s.C <- e:
		default:
		}
	}
}
