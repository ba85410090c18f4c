package watch

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// RedisBridge connects a local Bus to a Redis pub/sub channel so change
// ticks reach subscribers on other service instances (the stage display is
// often served by a different pod than the one taking submissions).
type RedisBridge struct {
	client  *redis.Client
	channel string
	bus     *Bus
}

// NewRedisBridge wires the bridge but does not start relaying; call Run in a
// goroutine. Channel may be empty, defaulting to "testimony:changed".
func NewRedisBridge(client *redis.Client, channel string, bus *Bus) *RedisBridge {
	if channel == "" {
		channel = "testimony:changed"
	}
	return &RedisBridge{client: client, channel: channel, bus: bus}
}

// Publish broadcasts a tick to all instances. The tick reaches the local bus
// through the relay like everyone else's, so local subscribers see it too.
func (b *RedisBridge) Publish() {
	if err := b.client.Publish(context.Background(), b.channel, "1").Err(); err != nil {
		logger.Warnf("watch: redis publish on %s failed: %v", b.channel, err)
		// fall back to the local bus so in-process subscribers still tick
		b.bus.Publish()
	}
}

// Run relays incoming Redis messages onto the local bus until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			b.bus.Publish()
		}
	}
}
