package watch

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a tick after publish")
	}

	// coalescing: many publishes, at least one tick pending
	b.Publish()
	b.Publish()
	b.Publish()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a coalesced tick")
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	// publishing after cancel must not panic or deliver
	b.Publish()

	// cancel is idempotent
	cancel()
}

func TestRedisBridgeRelaysTicks(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bus := NewBus()
	bridge := NewRedisBridge(client, "test:changed", bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	ch, unsub := bus.Subscribe()
	defer unsub()

	// give the pub/sub subscription a moment to attach
	require.Eventually(t, func() bool {
		bridge.Publish()
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}
