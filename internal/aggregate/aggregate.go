// Package aggregate provides the reducers the analytics engine is built from.
// Every function is pure and preserves input order.
package aggregate

import (
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/timewindow"
)

// FilterByType keeps transactions of the given type.
func FilterByType(txns []model.Transaction, typ model.TransactionType) []model.Transaction {
	return Filter(txns, func(t model.Transaction) bool { return t.Type == typ })
}

// FilterByNecessity keeps expenses with the given necessity. Income never matches.
func FilterByNecessity(txns []model.Transaction, n model.Necessity) []model.Transaction {
	return Filter(txns, func(t model.Transaction) bool {
		return t.IsExpense() && t.EffectiveNecessity() == n
	})
}

// FilterByDateRange keeps transactions with start <= date <= end.
func FilterByDateRange(txns []model.Transaction, start, end time.Time) []model.Transaction {
	return Filter(txns, func(t model.Transaction) bool {
		return !t.Date.Before(start) && !t.Date.After(end)
	})
}

// FilterWithin keeps transactions inside the half-open range r.
func FilterWithin(txns []model.Transaction, r timewindow.Range) []model.Transaction {
	return FilterByDateRange(txns, r.Start, r.Last())
}

// Filter keeps transactions for which keep returns true.
func Filter(txns []model.Transaction, keep func(model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sum adds up the amounts. It returns 0 for an empty slice.
func Sum(txns []model.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += t.Amount
	}
	return total
}

// PercentChange returns the change from previous to current in percent.
// A non-positive baseline yields 0 rather than a division by zero.
func PercentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
