package notify

import (
	"context"
	"sync"
)

// Broadcaster fans events out to in-process subscribers, one topic per
// cycle. A subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.RWMutex
	buffer int
	next   int
	topics map[string]map[int]chan Event
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{buffer: buffer, topics: make(map[string]map[int]chan Event)}
}

// Subscribe returns a channel of events for cycleID. The cancel func closes
// the channel and is safe to call more than once.
func (b *Broadcaster) Subscribe(cycleID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	subs, ok := b.topics[cycleID]
	if !ok {
		subs = make(map[int]chan Event)
		b.topics[cycleID] = subs
	}
	subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.topics[cycleID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(b.topics, cycleID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(_ context.Context, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.topics[ev.CycleID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Broadcaster) subscribers(cycleID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[cycleID])
}
