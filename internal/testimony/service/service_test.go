package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

func newTestService() (*Service, *watch.Bus) {
	bus := watch.NewBus()
	repo := repository.NewMemoryRepo(bus)
	services := repository.NewMemoryServiceRepo(bus)
	return New(repo, services, bus), bus
}

func TestSubmitAlwaysPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id, err := svc.Submit(ctx, SubmitRequest{
		Date:        "2026-03-01",
		Service:     "1st",
		Name:        "Sister Mary Watson",
		Description: "testimony body",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, testimony.StatusPending, got.Status)
	require.NotZero(t, got.CreatedAt)
	// optional fields are coerced to empty strings, never absent
	require.Equal(t, "", got.Phone)
	require.Equal(t, "", got.Email)
	require.Equal(t, "", got.WhatDidYouDo)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	cases := []struct {
		req   SubmitRequest
		field string
	}{
		{SubmitRequest{Date: "2026-03-01", Name: "A", Description: "d"}, "service"},
		{SubmitRequest{Date: "2026-03-01", Service: "1st", Description: "d"}, "name"},
		{SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "A"}, "description"},
	}
	for _, c := range cases {
		_, err := svc.Submit(ctx, c.req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, c.field, verr.Field)
	}
}

func TestReviewWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	svc.WithClock(func() int64 { return 12345 })

	id, err := svc.Submit(ctx, SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, svc.Review(ctx, id, testimony.StatusApproved))
	require.NoError(t, svc.Review(ctx, id, testimony.StatusDeclined))
	require.NoError(t, svc.Review(ctx, id, testimony.StatusApproved))

	// approved -> declined -> approved round-trips; createdAt untouched
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, testimony.StatusApproved, got.Status)
	require.Equal(t, int64(12345), got.CreatedAt)

	// no reviewer path back to pending
	require.ErrorIs(t, svc.Review(ctx, id, testimony.StatusPending), testimony.ErrIllegalTransition)

	// admin override can
	require.NoError(t, svc.SetStatus(ctx, id, testimony.StatusPending))
	got, err = svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, testimony.StatusPending, got.Status)

	require.ErrorIs(t, svc.Review(ctx, "missing", testimony.StatusApproved), repository.ErrNotFound)
}

func TestLookupPhone(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	clock := int64(100)
	svc.WithClock(func() int64 { clock++; return clock })

	_, err := svc.Submit(ctx, SubmitRequest{
		Date: "2026-03-01", Service: "1st", Name: "Old Name", Description: "d",
		Phone: "555-123-4567", Email: "old@example.com",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitRequest{
		Date: "2026-03-08", Service: "1st", Name: "New Name", Description: "d",
		Phone: "5551234567", Email: "new@example.com",
	})
	require.NoError(t, err)

	// same normalized digits: the later submission wins
	got, err := svc.LookupPhone(ctx, "(555) 123-4567")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "New Name", got.Name)
	require.Equal(t, "new@example.com", got.Email)

	// fewer than ten digits short-circuits to nil
	got, err = svc.LookupPhone(ctx, "555-123-456")
	require.NoError(t, err)
	require.Nil(t, got)

	// no match
	got, err = svc.LookupPhone(ctx, "999-999-9999")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSubscribeImmediateThenOnChange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Submit(ctx, SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "d"})
	require.NoError(t, err)

	stream, cancel := svc.Subscribe(ctx, "2026-03-01", "1st", nil)
	defer cancel()

	snap := recv(t, stream)
	require.Len(t, snap, 1)

	// a write anywhere in the collection re-fires the subscription
	_, err = svc.Submit(ctx, SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "Ben", Description: "d"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case snap, ok := <-stream:
			return ok && len(snap) == 2
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	stream, cancel := svc.Subscribe(ctx, "2026-03-01", "1st", nil)
	recv(t, stream) // initial empty snapshot
	cancel()

	// channel is closed after cancel; later writes deliver nothing
	_, err := svc.Submit(ctx, SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "d"})
	require.NoError(t, err)

	_, ok := <-stream
	require.False(t, ok)

	// cancel is idempotent
	cancel()
}

func TestSubscribeStatusFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id, err := svc.Submit(ctx, SubmitRequest{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "d"})
	require.NoError(t, err)

	approved := testimony.StatusApproved
	stream, cancel := svc.Subscribe(ctx, "2026-03-01", "1st", &approved)
	defer cancel()

	require.Empty(t, recv(t, stream))

	require.NoError(t, svc.Review(ctx, id, testimony.StatusApproved))
	require.Eventually(t, func() bool {
		select {
		case snap, ok := <-stream:
			return ok && len(snap) == 1
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListServicesSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "midweek", list[0].Key)
	require.Equal(t, "1st", list[1].Key)
	require.Equal(t, "2nd", list[2].Key)

	// seeding happens once, not per call
	list, err = svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestAddServiceOrderAndKeyUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id, err := svc.AddService(ctx, testimony.Service{Name: "Youth Night", Key: "youth"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.Equal(t, "youth", list[3].Key)
	require.Equal(t, 4, list[3].Order)

	_, err = svc.AddService(ctx, testimony.Service{Name: "Duplicate", Key: "youth"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "key", verr.Field)
}

func recv(t *testing.T, ch <-chan []testimony.Testimony) []testimony.Testimony {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
