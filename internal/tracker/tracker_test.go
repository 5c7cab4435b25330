package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/alexcho121/expense/internal/core"
	applog "github.com/alexcho121/expense/internal/log"
	"github.com/alexcho121/expense/internal/store"
)

func newTestTracker(t *testing.T) (*Tracker, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	tr, err := New(context.Background(), st, applog.New(applog.Config{Level: slog.LevelError, Component: "test"}))
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr, st
}

func TestAddTransactionPersists(t *testing.T) {
	ctx := context.Background()
	tr, st := newTestTracker(t)

	tx, err := tr.AddTransaction(ctx, core.Transaction{
		Description: "Coffee", Amount: 4.50, Kind: core.Expense, Category: "Food", Date: "2024-03-02",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("expected an assigned id")
	}

	// A reload immediately after the mutation must reflect it.
	reloaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reloaded.Transactions) != 1 || reloaded.Transactions[0].ID != tx.ID {
		t.Fatalf("durable record missing the mutation: %+v", reloaded)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	ctx := context.Background()
	tr, st := newTestTracker(t)

	_, err := tr.AddTransaction(ctx, core.Transaction{Description: "bad", Amount: 0, Kind: core.Expense})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// Nothing may have been written.
	reloaded, _ := st.Load(ctx)
	if len(reloaded.Transactions) != 0 {
		t.Fatalf("failed mutation leaked into the record: %+v", reloaded)
	}
}

func TestAddTransactionDefaultsCategory(t *testing.T) {
	tr, _ := newTestTracker(t)
	tx, err := tr.AddTransaction(context.Background(), core.Transaction{Amount: 1, Kind: core.Income, Category: "  "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.Category != core.DefaultCategory {
		t.Fatalf("category %q, want %q", tx.Category, core.DefaultCategory)
	}
}

func TestDeleteTransactionMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	if _, err := tr.AddTransaction(ctx, core.Transaction{Amount: 1, Kind: core.Income}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := tr.DeleteTransaction(ctx, "does-not-exist"); err != nil {
		t.Fatalf("deleting a missing id must not error: %v", err)
	}
	if got := len(tr.State().Transactions); got != 1 {
		t.Fatalf("collection changed: %d transactions", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	tx, _ := tr.AddTransaction(ctx, core.Transaction{Amount: 1, Kind: core.Income})
	keep, _ := tr.AddTransaction(ctx, core.Transaction{Amount: 2, Kind: core.Expense})

	if err := tr.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	state := tr.State()
	if len(state.Transactions) != 1 || state.Transactions[0].ID != keep.ID {
		t.Fatalf("got %+v, want only %s", state.Transactions, keep.ID)
	}
}

func TestClearTransactionsKeepsGoalsAndSettings(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	tr.AddTransaction(ctx, core.Transaction{Amount: 1, Kind: core.Income})
	tr.AddGoal(ctx, core.Goal{Name: "Trip", Target: 100})
	tr.SetBudgetLimit(ctx, 50)

	if err := tr.ClearTransactions(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state := tr.State()
	if len(state.Transactions) != 0 {
		t.Fatalf("transactions not cleared: %+v", state.Transactions)
	}
	if len(state.Goals) != 1 || state.Settings.BudgetLimit != 50 {
		t.Fatalf("clear touched goals or settings: %+v", state)
	}
}

func TestEditGoalAtomicPair(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	g, err := tr.AddGoal(ctx, core.Goal{Name: "Trip", Target: 100, Current: 10})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}

	// Invalid current must leave both fields untouched.
	if _, err := tr.EditGoal(ctx, g.ID, 200, -1); !errors.Is(err, core.ErrInvalidCurrent) {
		t.Fatalf("expected current validation error, got %v", err)
	}
	got := tr.State().Goals[0]
	if got.Target != 100 || got.Current != 10 {
		t.Fatalf("partial update applied: %+v", got)
	}

	updated, err := tr.EditGoal(ctx, g.ID, 200, 50)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Target != 200 || updated.Current != 50 {
		t.Fatalf("got %+v", updated)
	}
	if updated.ID != g.ID {
		t.Fatalf("edit regenerated the id: %q vs %q", updated.ID, g.ID)
	}
}

func TestEditGoalNotFound(t *testing.T) {
	tr, _ := newTestTracker(t)
	if _, err := tr.EditGoal(context.Background(), "missing", 10, 0); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestDeleteGoalMissingIsNoop(t *testing.T) {
	tr, _ := newTestTracker(t)
	if err := tr.DeleteGoal(context.Background(), "missing"); err != nil {
		t.Fatalf("deleting a missing goal must not error: %v", err)
	}
}

func TestSetBudgetLimit(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	if err := tr.SetBudgetLimit(ctx, -1); !errors.Is(err, core.ErrInvalidBudget) {
		t.Fatalf("expected budget validation error, got %v", err)
	}
	if err := tr.SetBudgetLimit(ctx, 0); err != nil {
		t.Fatalf("zero (unset) must be accepted: %v", err)
	}
}

func TestToggleTheme(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)

	theme, err := tr.ToggleTheme(ctx)
	if err != nil || theme != core.ThemeLight {
		t.Fatalf("got %v %v, want light", theme, err)
	}
	theme, err = tr.ToggleTheme(ctx)
	if err != nil || theme != core.ThemeDark {
		t.Fatalf("got %v %v, want dark", theme, err)
	}
}

func TestIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tx, err := tr.AddTransaction(ctx, core.Transaction{Amount: 1, Kind: core.Income})
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %q", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestNewRecoversFromMalformedRecord(t *testing.T) {
	st := store.NewMemoryStore()
	st.Seed([]byte("{{{"))

	tr, err := New(context.Background(), st, applog.New(applog.Config{Level: slog.LevelError, Component: "test"}))
	if err != nil {
		t.Fatalf("malformed record must not be fatal: %v", err)
	}
	state := tr.State()
	if len(state.Transactions) != 0 || state.Settings.Theme != core.ThemeDark {
		t.Fatalf("expected defaults, got %+v", state)
	}
}

type failingStore struct{ store.StateStore }

func (f failingStore) Save(context.Context, core.State) error {
	return fmt.Errorf("disk full")
}

func TestFailedSaveKeepsLastKnownGoodState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	tr, err := New(ctx, failingStore{mem}, applog.New(applog.Config{Level: slog.LevelError, Component: "test"}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := tr.AddTransaction(ctx, core.Transaction{Amount: 1, Kind: core.Income}); err == nil {
		t.Fatalf("expected save failure")
	}
	if got := len(tr.State().Transactions); got != 0 {
		t.Fatalf("in-memory state changed despite failed persist: %d transactions", got)
	}
}
