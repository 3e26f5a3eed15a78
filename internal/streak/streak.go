// Package streak derives spending and no-spending streaks from the full transaction history.
package streak

import (
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/timewindow"
)

// MaxLookback bounds how many days a streak scan walks backwards.
const MaxLookback = 365

// Data is the streak state anchored at today. At most one counter is non-zero.
type Data struct {
	LastNoExpenseDate *time.Time `json:"lastNoExpenseDate"`
	LastSpendingDate  *time.Time `json:"lastSpendingDate"`
	NoExpenseStreak   int        `json:"noExpenseStreak"`
	SpendingStreak    int        `json:"spendingStreak"`
}

// Active returns the non-zero streak count and whether it is a spending streak.
func (d Data) Active() (days int, spending bool) {
	if d.SpendingStreak > 0 {
		return d.SpendingStreak, true
	}
	return d.NoExpenseStreak, false
}

// Calculate scans backwards from today over calendar days in w's location.
// Without any expense history both streaks are zero and no anchors are set.
func Calculate(txns []model.Transaction, w timewindow.Windows) Data {
	loc := w.Location()
	today := w.Today()

	spendDays := make(map[string]struct{})
	var earliest time.Time
	for _, t := range txns {
		if !t.IsExpense() || !t.Usable() {
			continue
		}
		spendDays[timewindow.DayKey(t.Date, loc)] = struct{}{}
		day := timewindow.StartOfDay(t.Date, loc)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
	}

	if len(spendDays) == 0 {
		return Data{}
	}

	limit := min(MaxLookback, timewindow.DaysBetween(earliest, today)+1)
	_, todaySpent := spendDays[timewindow.DayKey(today, loc)]

	count := 1
	for i := 1; i < limit; i++ {
		_, spent := spendDays[timewindow.DayKey(today.AddDate(0, 0, -i), loc)]
		if spent != todaySpent {
			break
		}
		count++
	}

	anchor := today
	if todaySpent {
		return Data{SpendingStreak: count, LastSpendingDate: &anchor}
	}
	return Data{NoExpenseStreak: count, LastNoExpenseDate: &anchor}
}
