package client

import "sync"

// Topic names an event on the bus.
type Topic string

// ListChanged is published after the product list on the server changed.
const ListChanged Topic = "products.list-changed"

// EventBus delivers topic notifications to subscribers synchronously.
type EventBus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]func()
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[Topic]map[int]func())}
}

// Subscribe registers fn for topic and returns a func that removes it.
func (b *EventBus) Subscribe(topic Topic, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
		})
	}
}

// Publish calls every subscriber of topic.
func (b *EventBus) Publish(topic Topic) {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}
