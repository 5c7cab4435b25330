// Package core holds the domain model and the pure derivation functions that
// compute every displayed view from raw state. Derivations are deterministic
// given a state and a reference time and are recomputed on every call; nothing
// here keeps results around between calls.
package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	// FallbackCategory groups expense transactions whose category is blank.
	FallbackCategory = "Other"

	monthKeyLayout = "2006-01"
)

type (
	// Summary holds the headline totals shown on the dashboard.
	Summary struct {
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Balance float64 `json:"balance"`
	}

	// CategoryTotal is one slice of the expenses-by-category breakdown.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// MonthBucket aggregates income and expense for one calendar month.
	MonthBucket struct {
		Month   string  `json:"month"` // "YYYY-MM"
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	// BudgetUsage reports spending in the reference month against the
	// configured limit.
	BudgetUsage struct {
		Spent    float64 `json:"spent"`
		Limit    float64 `json:"limit"`
		Percent  float64 `json:"percent"`
		Exceeded bool    `json:"exceeded"`
	}
)

// Summarize totals income and expense across all transactions.
func Summarize(s State) Summary {
	var sum Summary
	for _, t := range s.Transactions {
		switch t.Kind {
		case Income:
			sum.Income += t.Amount
		case Expense:
			sum.Expense += t.Amount
		}
	}
	sum.Balance = sum.Income - sum.Expense
	return sum
}

// ExpensesByCategory groups expense amounts by category in first-seen order.
// Transactions without a category fold into the fallback bucket.
func ExpensesByCategory(s State) []CategoryTotal {
	index := make(map[string]int)
	out := []CategoryTotal{}
	for _, t := range s.Transactions {
		if t.Kind != Expense {
			continue
		}
		key := t.Category
		if key == "" {
			key = FallbackCategory
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CategoryTotal{Category: key})
		}
		out[i].Total += t.Amount
	}
	return out
}

// MonthlySeries produces exactly monthsBack consecutive month buckets ending
// at the month containing ref, oldest first and zero-filled. A transaction
// belongs to a bucket when its date string starts with the bucket's
// "YYYY-MM" key; dateless transactions never match.
func MonthlySeries(s State, monthsBack int, ref time.Time) []MonthBucket {
	out := make([]MonthBucket, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		month := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, ref.Location())
		bucket := MonthBucket{Month: month.Format(monthKeyLayout)}
		for _, t := range s.Transactions {
			if t.Date == "" || !strings.HasPrefix(t.Date, bucket.Month) {
				continue
			}
			switch t.Kind {
			case Income:
				bucket.Income += t.Amount
			case Expense:
				bucket.Expense += t.Amount
			}
		}
		out = append(out, bucket)
	}
	return out
}

// BudgetUsageFor sums expenses dated in ref's calendar month against the
// configured limit. A zero limit means unset: percent stays 0 and the budget
// is never reported as exceeded.
func BudgetUsageFor(s State, ref time.Time) BudgetUsage {
	usage := BudgetUsage{Limit: s.Settings.BudgetLimit}
	key := ref.Format(monthKeyLayout)
	for _, t := range s.Transactions {
		if t.Kind == Expense && t.Date != "" && strings.HasPrefix(t.Date, key) {
			usage.Spent += t.Amount
		}
	}
	if usage.Limit > 0 {
		usage.Percent = math.Min(usage.Spent/usage.Limit*100, 100)
		usage.Exceeded = usage.Spent > usage.Limit
	}
	return usage
}

// GoalProgress returns the goal's completion percentage, rounded and clamped
// to 100. A non-positive target short-circuits to 0 rather than dividing.
func GoalProgress(g Goal) int {
	if g.Target <= 0 {
		return 0
	}
	percent := int(math.Round(g.Current / g.Target * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// SortedTransactions returns the transactions ordered newest date first.
// Dateless transactions sort as earliest, so they land at the end. The sort
// is stable: same-date entries keep their insertion order.
func SortedTransactions(s State) []Transaction {
	out := append([]Transaction(nil), s.Transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// FilterRecurring keeps only transactions flagged as recurring.
func FilterRecurring(list []Transaction) []Transaction {
	out := []Transaction{}
	for _, t := range list {
		if t.Recurring {
			out = append(out, t)
		}
	}
	return out
}

// RecentTransactions returns the n newest transactions.
func RecentTransactions(s State, n int) []Transaction {
	sorted := SortedTransactions(s)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
