package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexcho121/expense/internal/core"
)

// stateKey identifies the single durable record. The suffix versions the
// document shape, not the schema.
const stateKey = "expense-tracker-state-v1"

// SQLiteStore keeps the domain state in a one-row document table, the Go
// analogue of a single persisted key-value entry.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the durable record. An absent row yields defaults with no
// error; a present but unparseable document yields defaults wrapped with
// ErrMalformedRecord so the caller can report and continue. The bad record
// is deliberately not rewritten.
func (s *SQLiteStore) Load(ctx context.Context) (core.State, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM app_state WHERE key = ?`, stateKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultState(), nil
	}
	if err != nil {
		return core.DefaultState(), fmt.Errorf("read state record: %w", err)
	}
	return DecodeState([]byte(doc))
}

// Save serializes the full state and overwrites the durable record in place.
func (s *SQLiteStore) Save(ctx context.Context, state core.State) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		stateKey, string(data))
	if err != nil {
		return fmt.Errorf("write state record: %w", err)
	}
	return nil
}
