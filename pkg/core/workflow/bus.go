package workflow

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// subscriberBuffer is the per-subscriber channel capacity. When a subscriber
// falls behind, the oldest buffered event is dropped to make room for the
// newest and the subscriber is marked lagging.
const subscriberBuffer = 64

type subscriber struct {
	ch      chan Event
	lagging bool
}

// Bus fans events out to stream subscribers, replaying history to late
// joiners. Publish never blocks on a slow consumer.
type Bus struct {
	mu      sync.RWMutex
	history []Event
	subs    map[*subscriber]struct{}
	closed  bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a new consumer and returns its channel plus a copy of
// the history so far. The channel is closed when the workflow completes or
// the consumer unsubscribes.
func (b *Bus) Subscribe() (<-chan Event, []Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	historyCopy := make([]Event, len(b.history))
	copy(historyCopy, b.history)

	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if b.closed {
		close(sub.ch)
		return sub.ch, historyCopy
	}
	b.subs[sub] = struct{}{}
	return sub.ch, historyCopy
}

// Unsubscribe detaches a consumer channel obtained from Subscribe.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if sub.ch == ch {
			delete(b.subs, sub)
			close(sub.ch)
			return
		}
	}
}

// Publish appends the event to history and delivers it to every subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.history = append(b.history, evt)

	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			// Full buffer: drop the oldest event, keep the newest.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- evt:
			default:
			}
			if !sub.lagging {
				sub.lagging = true
				log.Warn().Str("event_id", evt.EventID).Msg("stream subscriber lagging, dropping oldest events")
			}
		}
	}
}

// History returns a copy of all events published so far.
func (b *Bus) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	historyCopy := make([]Event, len(b.history))
	copy(historyCopy, b.history)
	return historyCopy
}

// Close ends the stream: every subscriber channel is closed and further
// publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
		delete(b.subs, sub)
	}
}
