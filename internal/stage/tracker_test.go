package stage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

func tm(id string, createdAt int64) testimony.Testimony {
	return testimony.Testimony{ID: id, CreatedAt: createdAt, Status: testimony.StatusApproved}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestBaselineIsNeverNew(t *testing.T) {
	tr := NewTracker()
	entries := tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200)})
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.False(t, e.New)
	}
	// baseline group renders newest-first
	require.Equal(t, []string{"b", "a"}, ids(entries))
}

func TestNewClassificationIsDurable(t *testing.T) {
	tr := NewTracker()
	tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200)})

	entries := tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200), tm("c", 300)})
	require.Equal(t, []string{"c", "b", "a"}, ids(entries))
	require.True(t, entries[0].New)
	require.False(t, entries[1].New)
	require.False(t, entries[2].New)

	// next tick adds d: both c and d stay new, a/b never re-classify
	entries = tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200), tm("c", 300), tm("d", 400)})
	require.Equal(t, []string{"d", "c", "b", "a"}, ids(entries))
	require.True(t, entries[0].New)
	require.True(t, entries[1].New)
	require.False(t, entries[2].New)
	require.False(t, entries[3].New)

	require.True(t, tr.IsNew("c"))
	require.False(t, tr.IsNew("a"))
}

func TestNewGroupOrdersNewestFirst(t *testing.T) {
	tr := NewTracker()
	tr.Apply([]testimony.Testimony{tm("a", 100)})
	entries := tr.Apply([]testimony.Testimony{tm("a", 100), tm("c", 300), tm("b", 200)})
	require.Equal(t, []string{"c", "b", "a"}, ids(entries))
}

func TestResetTakesFreshBaseline(t *testing.T) {
	tr := NewTracker()
	tr.Apply([]testimony.Testimony{tm("a", 100)})
	tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200)})
	require.True(t, tr.IsNew("b"))

	tr.Reset()
	entries := tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200), tm("c", 300)})
	for _, e := range entries {
		require.False(t, e.New)
	}
	require.False(t, tr.IsNew("b"))
}

func TestVanishedItemsDoNotDisturbBaseline(t *testing.T) {
	tr := NewTracker()
	tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200)})

	// b drops out (declined again), then returns: still baseline, not new
	tr.Apply([]testimony.Testimony{tm("a", 100)})
	entries := tr.Apply([]testimony.Testimony{tm("a", 100), tm("b", 200)})
	for _, e := range entries {
		require.False(t, e.New)
	}
}
