// Package live holds the single-slot broadcast register: the one testimony
// currently shown to viewers. Writes are last-write-wins; the usage model
// is one media operator at a time.
package live

import (
	"context"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

// Register is the persistence boundary for the live slot. Get returns
// (nil, nil) when nothing is live; Clear on an empty slot is a no-op.
// Implementations notify their change publisher after every write.
type Register interface {
	Set(ctx context.Context, rec *testimony.LiveTestimony) error
	Get(ctx context.Context) (*testimony.LiveTestimony, error)
	Clear(ctx context.Context) error
}
