package repository

import (
	"context"
	"errors"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

var (
	// ErrNotFound is returned by mutations and lookups on unknown ids.
	ErrNotFound = errors.New("record not found")
)

// Update carries a partial testimony update. Nil fields are left untouched.
// CreatedAt and ID are deliberately not updatable.
type Update struct {
	Date         *string
	Service      *string
	Name         *string
	Phone        *string
	Email        *string
	WhatDidYouDo *string
	Description  *string
	Status       *testimony.Status
}

// ServiceUpdate carries a partial service update.
type ServiceUpdate struct {
	Name  *string
	Key   *string
	Order *int
}

// Repository is the persistence boundary for testimonies. Writes notify the
// change publisher so live subscribers can re-read; query ordering is part of
// the contract (scoped lists ascend by createdAt, ListAll descends).
type Repository interface {
	Create(ctx context.Context, t *testimony.Testimony) (string, error)
	Get(ctx context.Context, id string) (*testimony.Testimony, error)
	ListByDateService(ctx context.Context, date, service string, status *testimony.Status) ([]testimony.Testimony, error)
	ListByDate(ctx context.Context, date string) ([]testimony.Testimony, error)
	ListAll(ctx context.Context) ([]testimony.Testimony, error)
	SetStatus(ctx context.Context, id string, status testimony.Status) error
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
}

// ServiceRepository is the persistence boundary for service slots.
// List returns services sorted by their display order.
type ServiceRepository interface {
	List(ctx context.Context) ([]testimony.Service, error)
	Add(ctx context.Context, s *testimony.Service) (string, error)
	Update(ctx context.Context, id string, upd ServiceUpdate) error
	Delete(ctx context.Context, id string) error
}
