package memory

import (
	"context"
	"sync"

	"github.com/promptlab/promptlab/internal/domain/event"
	porteventbus "github.com/promptlab/promptlab/internal/port/eventbus"
)

// Bus is an in-process event bus. Delivery is synchronous: Publish invokes
// every handler on the event's channel before returning, so handlers must
// not publish back onto the bus from inside themselves.
type Bus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*busSubscription]porteventbus.Handler
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[event.Channel]map[*busSubscription]porteventbus.Handler),
	}
}

func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	b.mu.RLock()
	handlers := make([]porteventbus.Handler, 0, len(b.subs[ch]))
	for _, h := range b.subs[ch] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	sub := &busSubscription{bus: b, channel: ch}

	b.mu.Lock()
	if b.subs[ch] == nil {
		b.subs[ch] = make(map[*busSubscription]porteventbus.Handler)
	}
	b.subs[ch][sub] = handler
	b.mu.Unlock()

	return sub, nil
}

type busSubscription struct {
	bus     *Bus
	channel event.Channel
	once    sync.Once
}

func (s *busSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		s.bus.mu.Unlock()
	})
}
