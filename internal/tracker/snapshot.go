package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexcho121/expense/internal/store"
)

// ExportFileName is the suggested download name for exported snapshots.
const ExportFileName = "expense-tracker-data.json"

// ErrImportFormat reports import content that is not a well-formed snapshot
// document. The current state is left untouched.
var ErrImportFormat = errors.New("import data is not a valid snapshot document")

// ExportSnapshot serializes the full current state as a pretty-printed
// document suitable for download.
func (t *Tracker) ExportSnapshot() ([]byte, error) {
	t.mu.Lock()
	state := t.state.Clone()
	t.mu.Unlock()
	return store.EncodeStatePretty(state)
}

// ImportSnapshot parses an externally supplied snapshot and atomically
// replaces the entire current state with it. The parse applies the same
// per-field tolerance as loading the durable record; only a document that is
// not a JSON object at all is rejected. No merging with existing data
// happens: import is a full replace, persisted before it takes effect.
func (t *Tracker) ImportSnapshot(ctx context.Context, data []byte) error {
	next, err := store.DecodeState(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportFormat, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.commit(ctx, next); err != nil {
		return err
	}
	t.log.Info("Snapshot imported",
		"transactions", len(next.Transactions),
		"goals", len(next.Goals))
	return nil
}
