package store

import (
	"encoding/json"
	"fmt"

	"github.com/alexcho121/expense/internal/core"
)

// document mirrors the durable record shape with raw sub-fields so each one
// can be validated independently. Unknown extra fields are ignored, never
// rejected.
type document struct {
	Transactions json.RawMessage `json:"transactions"`
	Goals        json.RawMessage `json:"goals"`
	Settings     json.RawMessage `json:"settings"`
}

// partialSettings decodes only the settings fields that are actually present,
// so missing ones keep their defaults.
type partialSettings struct {
	Theme       *core.Theme `json:"theme"`
	BudgetLimit *float64    `json:"budgetLimit"`
}

// DecodeState parses a durable record into a state. The shape is never
// trusted wholesale: a document that is not a JSON object fails with
// ErrMalformedRecord, while individually malformed sub-fields degrade to
// their defaults (non-array transactions/goals become empty, settings
// shallow-merge over defaults).
func DecodeState(data []byte) (core.State, error) {
	state := core.DefaultState()

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return state, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if len(doc.Transactions) > 0 {
		var txs []core.Transaction
		if err := json.Unmarshal(doc.Transactions, &txs); err == nil && txs != nil {
			state.Transactions = txs
		}
	}
	if len(doc.Goals) > 0 {
		var goals []core.Goal
		if err := json.Unmarshal(doc.Goals, &goals); err == nil && goals != nil {
			state.Goals = goals
		}
	}
	if len(doc.Settings) > 0 {
		var ps partialSettings
		if err := json.Unmarshal(doc.Settings, &ps); err == nil {
			if ps.Theme != nil {
				state.Settings.Theme = *ps.Theme
			}
			if ps.BudgetLimit != nil {
				state.Settings.BudgetLimit = *ps.BudgetLimit
			}
		}
	}

	return state, nil
}

// EncodeState serializes the full state as the durable record document.
func EncodeState(s core.State) ([]byte, error) {
	data, err := json.Marshal(normalize(s))
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// EncodeStatePretty renders the same document indented for human-readable
// snapshot files.
func EncodeStatePretty(s core.State) ([]byte, error) {
	data, err := json.MarshalIndent(normalize(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// normalize makes sure nil collections serialize as [] rather than null, so
// every written record is itself loadable without the tolerance fallbacks.
func normalize(s core.State) core.State {
	if s.Transactions == nil {
		s.Transactions = []core.Transaction{}
	}
	if s.Goals == nil {
		s.Goals = []core.Goal{}
	}
	return s
}
