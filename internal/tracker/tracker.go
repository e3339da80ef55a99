package tracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/providers/sheets"
)

// Tracker detects rows appended to the sheet since the previous poll. It is
// an explicit state object owned by the poll driver; only that driver's
// serialized ticks ever touch it, so it carries no lock.
//
// The sheet is treated as append-only. Edits or deletions of existing rows
// are not modeled and can desynchronize the count; that is a documented
// limitation of row-diff polling, not something Poll tries to repair.
type Tracker struct {
	lastKnownRows int
	initialized   bool
	log           *zap.Logger
}

// Batch is one poll's worth of newly appended rows. Grid is the full
// snapshot the batch was cut from, so callers can run history scans (first
// sale) against exactly the data the diff saw.
type Batch struct {
	Rows       [][]string
	StartIndex int
	Grid       [][]string
}

func New(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{log: log.Named("tracker")}
}

// Poll reads the source and returns the rows appended since the last
// successful poll, or nil when nothing changed.
//
// The first successful read only establishes the baseline row count and
// never reports rows, so a restart does not replay the whole sheet. While
// initialization keeps failing the tracker stays uninitialized and retries
// on every tick; it never assumes a default count. State advances only
// after a batch is produced, so a failed fetch can never skip rows.
func (t *Tracker) Poll(ctx context.Context, src sheets.Source) (*Batch, error) {
	grid, err := src.Grid(ctx)
	if err != nil {
		return nil, err
	}

	if !t.initialized {
		t.lastKnownRows = len(grid)
		t.initialized = true
		t.log.Info("row count initialized", zap.Int("rows", t.lastKnownRows))
		return nil, nil
	}

	current := len(grid)
	if current <= t.lastKnownRows {
		return nil, nil
	}

	t.log.Info("change detected",
		zap.Int("old_rows", t.lastKnownRows),
		zap.Int("new_rows", current),
	)
	batch := &Batch{
		Rows:       grid[t.lastKnownRows:current],
		StartIndex: t.lastKnownRows,
		Grid:       grid,
	}
	t.lastKnownRows = current
	return batch, nil
}

// Initialized reports whether the baseline read has succeeded yet.
func (t *Tracker) Initialized() bool {
	return t.initialized
}

// LastKnownRows returns the current baseline, header row included.
func (t *Tracker) LastKnownRows() int {
	return t.lastKnownRows
}
