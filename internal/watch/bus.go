// Package watch provides the change-notification plumbing behind live
// subscriptions: an in-process fan-out bus plus an optional Redis bridge
// that relays ticks between service instances.
package watch

import "sync"

// Publisher is the write-side hook repositories call after a successful
// mutation. Bus satisfies it directly; RedisBridge satisfies it for
// multi-instance deployments.
type Publisher interface {
	Publish()
}

// Bus fans out coalescing change ticks. Subscribers receive at-least-one
// tick after any Publish; consecutive ticks may be collapsed, so receivers
// must re-read state rather than count notifications.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener. The returned cancel is synchronous: after
// it returns no tick will be delivered on ch, and ch is closed.
func (b *Bus) Subscribe() (ch <-chan struct{}, cancel func()) {
	c := make(chan struct{}, 1)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = c
	b.mu.Unlock()

	cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		close(c)
	}
	return c, cancel
}

// Publish delivers a tick to every subscriber. A subscriber that already has
// a pending tick is skipped (the pending tick covers this change too).
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.subs {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}
