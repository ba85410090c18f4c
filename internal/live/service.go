package live

import (
	"context"
	"sync"
	"time"

	"github.com/harvestchapel/testimony-live/internal/names"
	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// Service wraps a Register with the display-name derivation and the
// subscription stream.
type Service struct {
	reg Register
	bus *watch.Bus
	now func() int64
}

// New builds a Service. bus must be the bus the register publishes to.
func New(reg Register, bus *watch.Bus) *Service {
	return &Service{
		reg: reg,
		bus: bus,
		now: func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the update timestamp source. Test hook.
func (s *Service) WithClock(now func() int64) *Service {
	s.now = now
	return s
}

// SetLive promotes a testimony to the broadcast slot, deriving the public
// short name from the submitter's full name. Last write wins.
func (s *Service) SetLive(ctx context.Context, testimonyID, fullName string) (*testimony.LiveTestimony, error) {
	rec := &testimony.LiveTestimony{
		TestimonyID: testimonyID,
		DisplayName: names.FormatDisplay(fullName),
		Name:        fullName,
		UpdatedAt:   s.now(),
	}
	if err := s.reg.Set(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetLive returns the current slot, nil when nothing is live.
func (s *Service) GetLive(ctx context.Context) (*testimony.LiveTestimony, error) {
	return s.reg.Get(ctx)
}

// ClearLive empties the slot. No tombstone remains.
func (s *Service) ClearLive(ctx context.Context) error {
	return s.reg.Clear(ctx)
}

// SubscribeLive streams the slot value: the current value immediately, then
// every change, nil after a clear. Same cancellation contract as the
// testimony subscription: no send starts after cancel returns.
func (s *Service) SubscribeLive(ctx context.Context) (<-chan *testimony.LiveTestimony, func()) {
	out := make(chan *testimony.LiveTestimony, 1)
	ticks, cancelTicks := s.bus.Subscribe()
	ctx, cancelCtx := context.WithCancel(ctx)

	var mu sync.Mutex
	closed := false

	send := func(rec *testimony.LiveTestimony) bool {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return false
		}
		select {
		case out <- rec:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		rec, err := s.reg.Get(ctx)
		if err != nil {
			logger.Warnf("live: initial read failed: %v", err)
		} else if !send(rec) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				rec, err := s.reg.Get(ctx)
				if err != nil {
					logger.Warnf("live: refresh read failed: %v", err)
					continue
				}
				if !send(rec) {
					return
				}
			}
		}
	}()

	cancel := func() {
		cancelCtx()
		mu.Lock()
		if !closed {
			closed = true
			close(out)
		}
		mu.Unlock()
		cancelTicks()
	}
	return out, cancel
}
