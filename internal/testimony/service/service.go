// Package service implements the testimony store adapter: submission,
// triage queries, phone lookup, live subscriptions and the reviewer
// workflow, all over an injected repository pair.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/watch"
	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// ValidationError marks a required submission field that was missing. These
// are caught at the input boundary and never reach the store.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// SubmitRequest is the congregant-facing submission payload. Status and
// createdAt are never caller-controlled.
type SubmitRequest struct {
	Date         string `json:"date" binding:"required"`
	Service      string `json:"service"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	WhatDidYouDo string `json:"whatDidYouDo"`
	Description  string `json:"description"`
}

// Service exposes the store-adapter operations. All state lives in the
// injected repositories; Service itself only carries wiring.
type Service struct {
	repo     repository.Repository
	services repository.ServiceRepository
	bus      *watch.Bus
	now      func() int64 // epoch millis, swappable in tests
}

// New builds a Service. bus is the tick source for Subscribe; pass the same
// bus the repositories publish to.
func New(repo repository.Repository, services repository.ServiceRepository, bus *watch.Bus) *Service {
	return &Service{
		repo:     repo,
		services: services,
		bus:      bus,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the submission timestamp source. Test hook.
func (s *Service) WithClock(now func() int64) *Service {
	s.now = now
	return s
}

// Submit validates, normalizes and persists a new testimony. The record is
// always created pending, with createdAt set from the service clock, and all
// optional fields coerced to empty strings (the store rejects absent values).
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	switch {
	case strings.TrimSpace(req.Service) == "":
		return "", &ValidationError{Field: "service"}
	case strings.TrimSpace(req.Name) == "":
		return "", &ValidationError{Field: "name"}
	case strings.TrimSpace(req.Description) == "":
		return "", &ValidationError{Field: "description"}
	}
	t := &testimony.Testimony{
		Date:         req.Date,
		Service:      req.Service,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		WhatDidYouDo: req.WhatDidYouDo,
		Description:  req.Description,
		Status:       testimony.StatusPending,
		CreatedAt:    s.now(),
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id string) (*testimony.Testimony, error) {
	return s.repo.Get(ctx, id)
}

// ListByDateService returns matching testimonies ascending by createdAt.
func (s *Service) ListByDateService(ctx context.Context, date, svc string, status *testimony.Status) ([]testimony.Testimony, error) {
	return s.repo.ListByDateService(ctx, date, svc, status)
}

// ListByDate returns one day's testimonies across services, ascending.
func (s *Service) ListByDate(ctx context.Context, date string) ([]testimony.Testimony, error) {
	return s.repo.ListByDate(ctx, date)
}

// ListAll returns every testimony, newest first. The descending order is
// intentional: the admin table leads with recent submissions.
func (s *Service) ListAll(ctx context.Context) ([]testimony.Testimony, error) {
	return s.repo.ListAll(ctx)
}

// Review applies a pastor-surface status change, enforcing the transition
// table. Self-loops return nil without a write.
func (s *Service) Review(ctx context.Context, id string, to testimony.Status) error {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := testimony.CheckReview(cur.Status, to); err != nil {
		return err
	}
	if cur.Status == to {
		return nil
	}
	return s.repo.SetStatus(ctx, id, to)
}

// SetStatus is the administrative override: any valid status, no workflow.
func (s *Service) SetStatus(ctx context.Context, id string, to testimony.Status) error {
	if !to.Valid() {
		return &ValidationError{Field: "status"}
	}
	return s.repo.SetStatus(ctx, id, to)
}

// Update applies a partial administrative edit.
func (s *Service) Update(ctx context.Context, id string, upd repository.Update) error {
	if upd.Status != nil && !upd.Status.Valid() {
		return &ValidationError{Field: "status"}
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Create persists a full testimony record verbatim (admin import path).
// No validation beyond a defaulted status.
func (s *Service) Create(ctx context.Context, t *testimony.Testimony) (string, error) {
	if t.Status == "" {
		t.Status = testimony.StatusPending
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = s.now()
	}
	return s.repo.Create(ctx, t)
}

// LookupPhone finds the most recent submitter who used the given phone
// number, for form pre-fill. Numbers with fewer than ten digits return nil
// without touching the store; malformed stored records are skipped.
func (s *Service) LookupPhone(ctx context.Context, phone string) (*testimony.PhoneLookup, error) {
	normalized := digitsOnly(phone)
	if len(normalized) < 10 {
		return nil, nil
	}
	// ListAll is newest-first, so the first match wins
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Name == "" {
			continue
		}
		if digitsOnly(t.Phone) == normalized {
			return &testimony.PhoneLookup{Name: t.Name, Email: t.Email}, nil
		}
	}
	return nil, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Subscribe opens a live stream of snapshots for one date+service (and
// optional status). The channel fires immediately with the current snapshot,
// then again after every store change; the whole filter is re-evaluated per
// tick. Cancel is synchronous: once it returns, no new send starts and the
// channel is closed. A send in flight when cancel is called may still land.
func (s *Service) Subscribe(ctx context.Context, date, svc string, status *testimony.Status) (<-chan []testimony.Testimony, func()) {
	out := make(chan []testimony.Testimony, 1)
	ticks, cancelTicks := s.bus.Subscribe()
	ctx, cancelCtx := context.WithCancel(ctx)

	var mu sync.Mutex
	closed := false

	send := func(snap []testimony.Testimony) bool {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return false
		}
		select {
		case out <- snap:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		snap, err := s.repo.ListByDateService(ctx, date, svc, status)
		if err != nil {
			logger.Warnf("subscribe: initial snapshot failed: %v", err)
		} else if !send(snap) {
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
				snap, err := s.repo.ListByDateService(ctx, date, svc, status)
				if err != nil {
					logger.Warnf("subscribe: snapshot refresh failed: %v", err)
					continue
				}
				if !send(snap) {
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

// ListServices returns the service slots ordered for display, lazily seeding
// the three defaults the first time the collection is found empty.
func (s *Service) ListServices(ctx context.Context) ([]testimony.Service, error) {
	list, err := s.services.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}
	for i := range testimony.DefaultServices {
		seed := testimony.DefaultServices[i]
		if _, err := s.services.Add(ctx, &seed); err != nil {
			return nil, err
		}
	}
	return s.services.List(ctx)
}

// AddService creates a service slot at the end of the display order.
// Keys must be unique; they are what testimonies reference.
func (s *Service) AddService(ctx context.Context, svc testimony.Service) (string, error) {
	if strings.TrimSpace(svc.Name) == "" {
		return "", &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(svc.Key) == "" {
		return "", &ValidationError{Field: "key"}
	}
	existing, err := s.ListServices(ctx)
	if err != nil {
		return "", err
	}
	maxOrder := 0
	for _, e := range existing {
		if e.Key == svc.Key {
			return "", &ValidationError{Field: "key"}
		}
		if e.Order > maxOrder {
			maxOrder = e.Order
		}
	}
	svc.Order = maxOrder + 1
	return s.services.Add(ctx, &svc)
}

func (s *Service) UpdateService(ctx context.Context, id string, upd repository.ServiceUpdate) error {
	return s.services.Update(ctx, id, upd)
}

// DeleteService removes a slot. Testimonies referencing its key are left
// alone; dangling keys are tolerated and displayed raw.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	return s.services.Delete(ctx, id)
}
