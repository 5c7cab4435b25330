package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Amount: 4.50, Kind: Expense}, nil},
		{Transaction{Amount: 0.01, Kind: Income}, nil},
		{Transaction{Amount: 0, Kind: Expense}, ErrInvalidAmount},
		{Transaction{Amount: -3, Kind: Income}, ErrInvalidAmount},
		{Transaction{Amount: 5, Kind: "transfer"}, ErrInvalidKind},
	}
	for i, tc := range cases {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	cases := []struct {
		g    Goal
		want error
	}{
		{Goal{Target: 100, Current: 0}, nil},
		{Goal{Target: 100, Current: 250}, nil}, // overfunded goals are fine
		{Goal{Target: 0, Current: 0}, ErrInvalidTarget},
		{Goal{Target: -1, Current: 0}, ErrInvalidTarget},
		{Goal{Target: 100, Current: -5}, ErrInvalidCurrent},
	}
	for i, tc := range cases {
		if err := tc.g.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := (Settings{Theme: ThemeLight, BudgetLimit: 0}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Settings{Theme: ThemeDark, BudgetLimit: -1}).Validate(); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected budget error, got %v", err)
	}
	if err := (Settings{Theme: "sepia"}).Validate(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected theme error, got %v", err)
	}
}

func TestValidationErrorsShareSentinel(t *testing.T) {
	for _, err := range []error{ErrInvalidAmount, ErrInvalidKind, ErrInvalidTarget, ErrInvalidCurrent, ErrInvalidBudget, ErrInvalidTheme} {
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%v should wrap ErrValidation", err)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Food", "Food"},
		{"  Food  ", "Food"},
		{"", DefaultCategory},
		{"   ", DefaultCategory},
	}
	for i, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := DefaultState()
	s.Transactions = append(s.Transactions, Transaction{ID: "a", Amount: 1, Kind: Income})
	c := s.Clone()
	c.Transactions[0].ID = "b"
	c.Goals = append(c.Goals, Goal{ID: "g", Target: 1})
	if s.Transactions[0].ID != "a" || len(s.Goals) != 0 {
		t.Fatalf("clone mutated the original: %+v", s)
	}
}
