package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

// MemoryRepo is the in-memory testimony repository used for unit tests and
// storeless development runs. Behavior mirrors the Mongo repository,
// including change notification on every write.
type MemoryRepo struct {
	mu     sync.RWMutex
	store  map[string]testimony.Testimony
	events watch.Publisher
}

func NewMemoryRepo(events watch.Publisher) *MemoryRepo {
	return &MemoryRepo{store: make(map[string]testimony.Testimony), events: events}
}

func (m *MemoryRepo) notify() {
	if m.events != nil {
		m.events.Publish()
	}
}

func (m *MemoryRepo) Create(_ context.Context, t *testimony.Testimony) (string, error) {
	m.mu.Lock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.store[t.ID] = *t
	m.mu.Unlock()
	m.notify()
	return t.ID, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*testimony.Testimony, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepo) ListByDateService(_ context.Context, date, service string, status *testimony.Status) ([]testimony.Testimony, error) {
	m.mu.RLock()
	out := []testimony.Testimony{}
	for _, t := range m.store {
		if t.Date != date || t.Service != service {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, t)
	}
	m.mu.RUnlock()
	sortAscending(out)
	return out, nil
}

func (m *MemoryRepo) ListByDate(_ context.Context, date string) ([]testimony.Testimony, error) {
	m.mu.RLock()
	out := []testimony.Testimony{}
	for _, t := range m.store {
		if t.Date == date {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()
	sortAscending(out)
	return out, nil
}

func (m *MemoryRepo) ListAll(_ context.Context) ([]testimony.Testimony, error) {
	m.mu.RLock()
	out := make([]testimony.Testimony, 0, len(m.store))
	for _, t := range m.store {
		out = append(out, t)
	}
	m.mu.RUnlock()
	// newest first: the admin table leads with recent submissions
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryRepo) SetStatus(_ context.Context, id string, status testimony.Status) error {
	m.mu.Lock()
	t, ok := m.store[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	t.Status = status
	m.store[id] = t
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, upd Update) error {
	m.mu.Lock()
	t, ok := m.store[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	applyUpdate(&t, upd)
	m.store[id] = t
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.store[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.store, id)
	m.mu.Unlock()
	m.notify()
	return nil
}

func applyUpdate(t *testimony.Testimony, upd Update) {
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Service != nil {
		t.Service = *upd.Service
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Phone != nil {
		t.Phone = *upd.Phone
	}
	if upd.Email != nil {
		t.Email = *upd.Email
	}
	if upd.WhatDidYouDo != nil {
		t.WhatDidYouDo = *upd.WhatDidYouDo
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
}

func sortAscending(list []testimony.Testimony) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt < list[j].CreatedAt })
}

// MemoryServiceRepo is the in-memory service-slot repository.
type MemoryServiceRepo struct {
	mu     sync.RWMutex
	store  map[string]testimony.Service
	events watch.Publisher
}

func NewMemoryServiceRepo(events watch.Publisher) *MemoryServiceRepo {
	return &MemoryServiceRepo{store: make(map[string]testimony.Service), events: events}
}

func (m *MemoryServiceRepo) notify() {
	if m.events != nil {
		m.events.Publish()
	}
}

func (m *MemoryServiceRepo) List(_ context.Context) ([]testimony.Service, error) {
	m.mu.RLock()
	out := make([]testimony.Service, 0, len(m.store))
	for _, s := range m.store {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *MemoryServiceRepo) Add(_ context.Context, s *testimony.Service) (string, error) {
	m.mu.Lock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.store[s.ID] = *s
	m.mu.Unlock()
	m.notify()
	return s.ID, nil
}

func (m *MemoryServiceRepo) Update(_ context.Context, id string, upd ServiceUpdate) error {
	m.mu.Lock()
	s, ok := m.store[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Key != nil {
		s.Key = *upd.Key
	}
	if upd.Order != nil {
		s.Order = *upd.Order
	}
	m.store[id] = s
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MemoryServiceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.store[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.store, id)
	m.mu.Unlock()
	m.notify()
	return nil
}
