package live

import (
	"context"
	"sync"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

// MemoryRegister is the in-process register used by tests and storeless runs.
type MemoryRegister struct {
	mu     sync.RWMutex
	rec    *testimony.LiveTestimony
	events watch.Publisher
}

func NewMemoryRegister(events watch.Publisher) *MemoryRegister {
	return &MemoryRegister{events: events}
}

func (r *MemoryRegister) notify() {
	if r.events != nil {
		r.events.Publish()
	}
}

func (r *MemoryRegister) Set(_ context.Context, rec *testimony.LiveTestimony) error {
	cp := *rec
	r.mu.Lock()
	r.rec = &cp
	r.mu.Unlock()
	r.notify()
	return nil
}

func (r *MemoryRegister) Get(_ context.Context) (*testimony.LiveTestimony, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.rec == nil {
		return nil, nil
	}
	cp := *r.rec
	return &cp, nil
}

func (r *MemoryRegister) Clear(_ context.Context) error {
	r.mu.Lock()
	r.rec = nil
	r.mu.Unlock()
	r.notify()
	return nil
}
