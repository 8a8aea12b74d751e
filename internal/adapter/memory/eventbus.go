package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alanyang/product-catalog/internal/domain/event"
	porteventbus "github.com/alanyang/product-catalog/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// subscriberBuffer bounds how far a slow subscriber may lag before events to
// it are dropped.
const subscriberBuffer = 256

// EventBus delivers events to in-process subscribers. It stands in for the
// Postgres LISTEN/NOTIFY bus when the service runs with store=memory. Each
// subscription drains its own queue on a goroutine, so Publish never waits on
// a handler.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*subscription]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[event.Channel]map[*subscription]struct{}),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for sub := range eb.subs[ch] {
		select {
		case sub.queue <- e:
		default:
			slog.WarnContext(ctx, "memory eventbus: subscriber queue full, dropping event",
				"channel", ch, "type", e.Type, "entity_id", e.EntityID)
		}
	}
	return nil
}

// Subscribe runs handler for every event on ch until ctx is cancelled or the
// subscription is dropped.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		queue:  make(chan event.Event, subscriberBuffer),
		cancel: cancel,
	}

	eb.mu.Lock()
	if eb.subs[ch] == nil {
		eb.subs[ch] = make(map[*subscription]struct{})
	}
	eb.subs[ch][sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			eb.mu.Lock()
			delete(eb.subs[ch], sub)
			eb.mu.Unlock()
		}()
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-sub.queue:
				handler(subCtx, e)
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	queue  chan event.Event
	cancel context.CancelFunc
}

func (s *subscription) Unsubscribe() {
	s.cancel()
}
