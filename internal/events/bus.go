package events

import "sync"

// Bus is a channel-based pub-sub event bus. Subscribers attach either to a
// single topic or to every topic; publishing never blocks the engine, a full
// subscriber simply misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event
	allSubs []chan Event
	closed  bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Subscribe attaches to one topic. bufSize <= 0 defaults to 256.
func (b *Bus) Subscribe(topic string, bufSize int) <-chan Event {
	return b.attach(func(ch chan Event) {
		b.subs[topic] = append(b.subs[topic], ch)
	}, bufSize)
}

// SubscribeAll attaches to every topic through one channel.
func (b *Bus) SubscribeAll(bufSize int) <-chan Event {
	return b.attach(func(ch chan Event) {
		b.allSubs = append(b.allSubs, ch)
	}, bufSize)
}

func (b *Bus) attach(add func(chan Event), bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = 256
	}
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	add(ch)
	return ch
}

// Publish delivers an event to the topic's subscribers and to all-topic
// subscribers. Full channels drop the event rather than blocking.
func (b *Bus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range b.allSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes the bus and every subscriber channel. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
}
