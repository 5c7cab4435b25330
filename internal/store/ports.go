// Package store persists the whole domain state as a single durable JSON
// document and decodes it back with per-field tolerance.
package store

import (
	"context"
	"errors"

	"github.com/alexcho121/expense/internal/core"
)

// ErrMalformedRecord reports a durable record that exists but cannot be
// parsed as a state document. Callers recover by continuing with defaults;
// the record itself is left untouched so nothing is destroyed by a bad read.
var ErrMalformedRecord = errors.New("durable record is not a valid state document")

// StateStore is the durable home of the domain state. Save overwrites the
// whole record synchronously: once it returns nil, a subsequent Load sees the
// saved state.
type StateStore interface {
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, s core.State) error
}
