package actor

import (
	"sync"

	"github.com/pokerhall/pokerhall/internal/wire"
)

// Broadcaster fans one room's events out to every subscriber. Publishing
// never blocks: when a subscriber's buffer is full the oldest buffered
// message is dropped so laggards skip ahead instead of stalling the room.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
	size   int
}

// NewBroadcaster creates a broadcaster whose subscribers buffer size
// messages each.
func NewBroadcaster(size int) *Broadcaster {
	if size <= 0 {
		size = DefaultChannelSize
	}
	return &Broadcaster{subs: make(map[int]*Subscription), size: size}
}

// Subscribe registers a new subscriber starting at the next published
// message.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &Subscription{
		b:  b,
		id: b.nextID,
		ch: make(chan wire.ServerMessage, b.size),
	}
	b.nextID++
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers msg to every current subscriber.
func (b *Broadcaster) Publish(msg wire.ServerMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- msg:
			default:
			}
		}
	}
}

// CloseAll closes every subscription; used when the room shuts down.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one subscriber's view of a room's broadcast stream.
type Subscription struct {
	b    *Broadcaster
	id   int
	ch   chan wire.ServerMessage
	once sync.Once
}

// Recv returns the channel of broadcast messages. It is closed when the
// subscription or the room closes.
func (s *Subscription) Recv() <-chan wire.ServerMessage {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once and
// concurrently with Publish.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()
		if _, ok := s.b.subs[s.id]; ok {
			delete(s.b.subs, s.id)
			close(s.ch)
		}
	})
}
