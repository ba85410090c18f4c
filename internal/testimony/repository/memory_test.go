package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

func seed(t *testing.T, r *MemoryRepo) (ids []string) {
	t.Helper()
	ctx := context.Background()
	fixtures := []testimony.Testimony{
		{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "a", Status: testimony.StatusPending, CreatedAt: 100},
		{Date: "2026-03-01", Service: "1st", Name: "Ben", Description: "b", Status: testimony.StatusApproved, CreatedAt: 200},
		{Date: "2026-03-01", Service: "2nd", Name: "Cat", Description: "c", Status: testimony.StatusApproved, CreatedAt: 300},
		{Date: "2026-03-08", Service: "1st", Name: "Dan", Description: "d", Status: testimony.StatusDeclined, CreatedAt: 400},
	}
	for i := range fixtures {
		id, err := r.Create(ctx, &fixtures[i])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(nil)

	tm := &testimony.Testimony{Date: "2026-03-01", Service: "1st", Name: "Ann", Description: "healed", Status: testimony.StatusPending, CreatedAt: 1}
	id, err := r.Create(ctx, tm)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "healed", got.Description)

	require.NoError(t, r.SetStatus(ctx, id, testimony.StatusApproved))
	got, err = r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, testimony.StatusApproved, got.Status)
	require.Equal(t, int64(1), got.CreatedAt)

	desc := "healed twice"
	require.NoError(t, r.Update(ctx, id, Update{Description: &desc}))
	got, err = r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "healed twice", got.Description)
	require.Equal(t, "Ann", got.Name)

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(nil)
	require.ErrorIs(t, r.SetStatus(ctx, "nope", testimony.StatusApproved), ErrNotFound)
	require.ErrorIs(t, r.Update(ctx, "nope", Update{}), ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "nope"), ErrNotFound)
}

func TestMemoryRepoOrdering(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(nil)
	seed(t, r)

	// scoped queries ascend by createdAt
	byDS, err := r.ListByDateService(ctx, "2026-03-01", "1st", nil)
	require.NoError(t, err)
	require.Len(t, byDS, 2)
	require.Equal(t, "Ann", byDS[0].Name)
	require.Equal(t, "Ben", byDS[1].Name)

	byDate, err := r.ListByDate(ctx, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	require.Equal(t, int64(100), byDate[0].CreatedAt)
	require.Equal(t, int64(300), byDate[2].CreatedAt)

	// ListAll descends (admin view, newest first)
	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		require.Greater(t, all[i-1].CreatedAt, all[i].CreatedAt)
	}
}

func TestMemoryRepoStatusFilter(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(nil)
	seed(t, r)

	approved := testimony.StatusApproved
	got, err := r.ListByDateService(ctx, "2026-03-01", "1st", &approved)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Ben", got[0].Name)

	for _, tm := range got {
		require.Equal(t, "2026-03-01", tm.Date)
		require.Equal(t, "1st", tm.Service)
	}
}

func TestMemoryServiceRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryServiceRepo(nil)

	for i := range testimony.DefaultServices {
		s := testimony.DefaultServices[i]
		_, err := r.Add(ctx, &s)
		require.NoError(t, err)
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "midweek", list[0].Key)
	require.Equal(t, "2nd", list[2].Key)

	name := "Evening Service"
	require.NoError(t, r.Update(ctx, list[2].ID, ServiceUpdate{Name: &name}))
	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Evening Service", list[2].Name)

	require.NoError(t, r.Delete(ctx, list[0].ID))
	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.ErrorIs(t, r.Delete(ctx, "missing"), ErrNotFound)
}
