// Package tracker owns the canonical in-memory domain state. Every mutation
// validates its input, applies the change, and persists the full state
// synchronously before returning, so a reload immediately after a successful
// call always sees it. Mutations are serialized under one mutex; validation,
// in-memory update and persistence happen in a single uninterrupted step.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alexcho121/expense/internal/core"
	applog "github.com/alexcho121/expense/internal/log"
	"github.com/alexcho121/expense/internal/store"
)

type Tracker struct {
	mu    sync.Mutex
	state core.State
	store store.StateStore
	log   *applog.Logger

	// newID is swappable in tests; IDs are assigned once and never
	// regenerated on edit.
	newID func() string
}

// New loads the durable record and returns a ready tracker. A malformed
// record is reported and replaced in memory by defaults; the record itself is
// left untouched so nothing is lost before the first successful save.
func New(ctx context.Context, st store.StateStore, logger *applog.Logger) (*Tracker, error) {
	state, err := st.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrMalformedRecord) {
			return nil, fmt.Errorf("load state: %w", err)
		}
		logger.Warn("Durable record unreadable, starting from defaults", "error", err)
		state = core.DefaultState()
	}

	return &Tracker{
		state: state,
		store: st,
		log:   logger,
		newID: uuid.NewString,
	}, nil
}

// State returns a copy of the current state for derivation queries.
func (t *Tracker) State() core.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// commit persists next and, only on success, makes it the current state.
// A failed save leaves the previous in-memory state in force, so the session
// keeps its last-known-good data.
func (t *Tracker) commit(ctx context.Context, next core.State) error {
	if err := t.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	t.state = next
	return nil
}

// AddTransaction validates and records a new transaction. The submitted ID is
// ignored; a fresh identifier is assigned. A blank category defaults.
func (t *Tracker) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = t.newID()
	tx.Category = core.NormalizeCategory(tx.Category)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	next.Transactions = append(next.Transactions, tx)
	if err := t.commit(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	t.log.Debug("Transaction added", "id", tx.ID, "type", tx.Kind, "amount", tx.Amount)
	return tx, nil
}

// DeleteTransaction removes the matching transaction. An absent id is a
// no-op, not an error.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	kept := next.Transactions[:0]
	for _, tx := range next.Transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	if len(kept) == len(next.Transactions) {
		return nil
	}
	next.Transactions = kept
	return t.commit(ctx, next)
}

// ClearTransactions removes every transaction, leaving goals and settings
// alone.
func (t *Tracker) ClearTransactions(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	next.Transactions = []core.Transaction{}
	return t.commit(ctx, next)
}

// AddGoal validates and records a new savings goal.
func (t *Tracker) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = t.newID()
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	next.Goals = append(next.Goals, g)
	if err := t.commit(ctx, next); err != nil {
		return core.Goal{}, err
	}
	t.log.Debug("Goal added", "id", g.ID, "target", g.Target)
	return g, nil
}

// ErrGoalNotFound reports an edit against an unknown goal id.
var ErrGoalNotFound = errors.New("goal not found")

// EditGoal updates target and current as an atomic pair: both change or
// neither does.
func (t *Tracker) EditGoal(ctx context.Context, id string, target, current float64) (core.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	idx := -1
	for i, g := range next.Goals {
		if g.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Goal{}, ErrGoalNotFound
	}

	updated := next.Goals[idx]
	updated.Target = target
	updated.Current = current
	if err := updated.Validate(); err != nil {
		return core.Goal{}, err
	}
	next.Goals[idx] = updated
	if err := t.commit(ctx, next); err != nil {
		return core.Goal{}, err
	}
	return updated, nil
}

// DeleteGoal removes the matching goal; absent ids are a no-op.
func (t *Tracker) DeleteGoal(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	kept := next.Goals[:0]
	for _, g := range next.Goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(next.Goals) {
		return nil
	}
	next.Goals = kept
	return t.commit(ctx, next)
}

// SetBudgetLimit stores the monthly budget limit; zero means unset.
func (t *Tracker) SetBudgetLimit(ctx context.Context, limit float64) error {
	if !(limit >= 0) {
		return core.ErrInvalidBudget
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	next.Settings.BudgetLimit = limit
	return t.commit(ctx, next)
}

// SetTheme switches between the two themes.
func (t *Tracker) SetTheme(ctx context.Context, theme core.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	next.Settings.Theme = theme
	return t.commit(ctx, next)
}

// ToggleTheme flips the current theme and returns the new value.
func (t *Tracker) ToggleTheme(ctx context.Context) (core.Theme, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.state.Clone()
	if next.Settings.Theme == core.ThemeDark {
		next.Settings.Theme = core.ThemeLight
	} else {
		next.Settings.Theme = core.ThemeDark
	}
	if err := t.commit(ctx, next); err != nil {
		return "", err
	}
	return next.Settings.Theme, nil
}
