// Package stage classifies approved-testimony snapshots for the stage
// display: anything arriving after the viewer started watching is flagged
// and surfaced first.
package stage

import (
	"sort"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

// Entry is one rendered row: the testimony plus its attention flag.
type Entry struct {
	testimony.Testimony
	New bool `json:"new"`
}

// Tracker keeps one viewer's baseline. The first snapshot after construction
// (or Reset) becomes the baseline and none of it counts as new. Every id seen
// later that is absent from the baseline is flagged new, durably: the flag
// never reverts and the baseline never absorbs it.
//
// Not safe for concurrent use; each viewer session owns its own Tracker.
type Tracker struct {
	baseline map[string]struct{}
	seeded   bool
	fresh    map[string]struct{}
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset discards the baseline. The next snapshot becomes the new reference
// point and nothing is "new" relative to it. Called on filter change and on
// the viewer's manual refresh.
func (t *Tracker) Reset() {
	t.baseline = make(map[string]struct{})
	t.fresh = make(map[string]struct{})
	t.seeded = false
}

// Apply classifies a snapshot and returns it in render order: new items
// first, then baseline items, each group newest-first by createdAt.
func (t *Tracker) Apply(snapshot []testimony.Testimony) []Entry {
	if !t.seeded {
		for _, tm := range snapshot {
			t.baseline[tm.ID] = struct{}{}
		}
		t.seeded = true
	} else {
		for _, tm := range snapshot {
			if _, known := t.baseline[tm.ID]; !known {
				t.fresh[tm.ID] = struct{}{}
			}
		}
	}

	out := make([]Entry, 0, len(snapshot))
	for _, tm := range snapshot {
		_, isNew := t.fresh[tm.ID]
		out = append(out, Entry{Testimony: tm, New: isNew})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].New != out[j].New {
			return out[i].New
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// IsNew reports whether an id has been flagged since the baseline was taken.
func (t *Tracker) IsNew(id string) bool {
	_, ok := t.fresh[id]
	return ok
}
