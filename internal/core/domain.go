package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"

	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	// DefaultCategory is assigned when a transaction is submitted with a
	// blank category.
	DefaultCategory = "General"
)

type (
	Kind string

	Theme string

	Transaction struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Kind        Kind    `json:"type"`
		Category    string  `json:"category"`
		Date        string  `json:"date"` // "YYYY-MM-DD", empty when not provided
		Recurring   bool    `json:"recurring"`
	}

	Goal struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Target  float64 `json:"target"`
		Current float64 `json:"current"`
	}

	Settings struct {
		Theme       Theme   `json:"theme"`
		BudgetLimit float64 `json:"budgetLimit"`
	}

	// State is the single source of truth: every derived view is recomputed
	// from it, never cached.
	State struct {
		Transactions []Transaction `json:"transactions"`
		Goals        []Goal        `json:"goals"`
		Settings     Settings      `json:"settings"`
	}
)

var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount  = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidKind    = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrInvalidTarget  = fmt.Errorf("%w: goal target must be greater than zero", ErrValidation)
	ErrInvalidCurrent = fmt.Errorf("%w: goal current amount cannot be negative", ErrValidation)
	ErrInvalidBudget  = fmt.Errorf("%w: budget limit cannot be negative", ErrValidation)
	ErrInvalidTheme   = fmt.Errorf("%w: theme must be dark or light", ErrValidation)
)

// DefaultState returns the empty state used on first run and whenever the
// durable record is absent or unreadable.
func DefaultState() State {
	return State{
		Transactions: []Transaction{},
		Goals:        []Goal{},
		Settings: Settings{
			Theme:       ThemeDark,
			BudgetLimit: 0,
		},
	}
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (th Theme) Validate() error {
	switch th {
	case ThemeDark, ThemeLight:
		return nil
	}
	return ErrInvalidTheme
}

func (t Transaction) Validate() error {
	// Written so NaN fails too.
	if !(t.Amount > 0) {
		return ErrInvalidAmount
	}
	return t.Kind.Validate()
}

func (g Goal) Validate() error {
	if !(g.Target > 0) {
		return ErrInvalidTarget
	}
	if !(g.Current >= 0) {
		return ErrInvalidCurrent
	}
	return nil
}

func (s Settings) Validate() error {
	if err := s.Theme.Validate(); err != nil {
		return err
	}
	if !(s.BudgetLimit >= 0) {
		return ErrInvalidBudget
	}
	return nil
}

// NormalizeCategory trims the submitted category and falls back to the
// default when nothing remains.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return DefaultCategory
	}
	return category
}

// Clone returns a copy of the state whose collections are safe to mutate
// without affecting the receiver.
func (s State) Clone() State {
	out := s
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Goals = append([]Goal(nil), s.Goals...)
	return out
}
