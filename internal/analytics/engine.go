// Package analytics derives dashboard metrics from a transaction snapshot.
//
// The engine is pure: it reads the clock once per computation, never mutates its
// input and never fails. Empty or degenerate input yields zero values.
package analytics

import (
	"time"

	"github.com/Veraticus/budgly/internal/aggregate"
	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/timewindow"
)

const (
	// TopN is the number of entries kept in ranked breakdowns.
	TopN = 5
	// DailySeriesDays is the length of the trailing daily series.
	DailySeriesDays = 7
	// TrendMonths is the length of the monthly trend.
	TrendMonths = 6

	otherCategory = "Other"
	unknownMode   = "Unknown"
)

// Engine computes Snapshots relative to its clock.
type Engine struct {
	clock timewindow.Clock
	opts  []timewindow.Option
}

// NewEngine creates an engine. A nil clock means the system clock.
func NewEngine(clock timewindow.Clock, opts ...timewindow.Option) *Engine {
	if clock == nil {
		clock = timewindow.SystemClock{}
	}
	return &Engine{clock: clock, opts: opts}
}

// Windows returns calendar windows anchored at the engine's current time.
func (e *Engine) Windows() timewindow.Windows {
	return timewindow.FromClock(e.clock, e.opts...)
}

// FilterPeriod returns the transactions of all that fall inside period p.
func (e *Engine) FilterPeriod(p timewindow.Period, all []model.Transaction) []model.Transaction {
	return filterPeriod(e.Windows(), p, all)
}

func filterPeriod(w timewindow.Windows, p timewindow.Period, all []model.Transaction) []model.Transaction {
	r, bounded := w.PeriodRange(p)
	if !bounded {
		return aggregate.Filter(all, func(model.Transaction) bool { return true })
	}
	return aggregate.FilterWithin(all, r)
}

// ComputePeriod filters all to period p and computes its Snapshot.
func (e *Engine) ComputePeriod(p timewindow.Period, all []model.Transaction) Snapshot {
	w := e.Windows()
	return compute(w, filterPeriod(w, p, all), all)
}

// Compute derives the Snapshot for periodTxns. allTxns is the full history and is
// used for comparisons that ignore the active period: last month, weeks, the daily
// series and the monthly trend.
func (e *Engine) Compute(periodTxns, allTxns []model.Transaction) Snapshot {
	return compute(e.Windows(), periodTxns, allTxns)
}

func compute(w timewindow.Windows, periodTxns, allTxns []model.Transaction) Snapshot {
	period := aggregate.Filter(periodTxns, model.Transaction.Usable)
	all := aggregate.Filter(allTxns, model.Transaction.Usable)

	var s Snapshot
	s.Skipped = len(periodTxns) - len(period)
	if s.Skipped > 0 {
		common.LogDebug("Skipped unusable transactions", common.Fields{"count": s.Skipped})
	}

	expenses := aggregate.FilterByType(period, model.TypeExpense)
	income := aggregate.FilterByType(period, model.TypeIncome)
	allExpenses := aggregate.FilterByType(all, model.TypeExpense)

	s.PeriodTotal = aggregate.Sum(expenses)
	s.PeriodIncomeTotal = aggregate.Sum(income)
	s.LastMonthTotal = aggregate.Sum(aggregate.FilterWithin(allExpenses, w.PreviousMonth()))
	s.PercentChange = aggregate.PercentChange(s.PeriodTotal, s.LastMonthTotal)

	s.NeedsTotal = aggregate.Sum(aggregate.FilterByNecessity(expenses, model.NecessityNeed))
	s.WantsTotal = aggregate.Sum(aggregate.FilterByNecessity(expenses, model.NecessityWant))
	s.Uncategorized = aggregate.Sum(aggregate.FilterByNecessity(expenses, model.NecessityNone))
	s.NeedsWantsRatio = NeedsWantsRatio(s.NeedsTotal, s.WantsTotal)
	s.PieData = pieSlices(s.NeedsTotal, s.WantsTotal, s.Uncategorized)

	s.SavingsThisPeriod = s.PeriodIncomeTotal - s.PeriodTotal
	if s.PeriodIncomeTotal > 0 {
		s.SavingsRate = s.SavingsThisPeriod / s.PeriodIncomeTotal * 100
	}

	s.ThisWeekTotal = aggregate.Sum(aggregate.FilterWithin(allExpenses, w.Week(0)))
	s.LastWeekTotal = aggregate.Sum(aggregate.FilterWithin(allExpenses, w.Week(1)))
	s.WeekChange = aggregate.PercentChange(s.ThisWeekTotal, s.LastWeekTotal)

	s.TopCategories = aggregate.AggregateByKey(expenses, categoryOf).Ranked(TopN)
	s.ByMode = aggregate.AggregateByKey(expenses, paymentModeOf).Ranked(TopN)
	s.DailyData = dailySeries(w, all)
	s.MonthlyTrend = monthlyTrend(w, all)

	s.TransactionCount = len(expenses)
	if s.TransactionCount > 0 {
		s.AvgDailySpending = s.PeriodTotal / float64(spanDays(w.Location(), period))
		s.AvgTransactionSize = s.PeriodTotal / float64(s.TransactionCount)
	}

	s.BiggestExpense = biggest(expenses)
	if top, ok := aggregate.CountByKey(expenses, categoryOf).Top(); ok {
		s.MostFrequentCategory = &CategoryCount{Name: top.Label, Count: int(top.Value)}
	}

	days := dailyTotals(w.Location(), expenses)
	s.UniqueSpendingDays = len(days)
	s.BestDay, s.WorstDay = bestAndWorst(days)

	return s
}

// NeedsWantsRatio divides needs by wants. Zero wants gives Unbounded when there are
// needs and 0 when there are none.
func NeedsWantsRatio(needs, wants float64) Ratio {
	switch {
	case wants > 0:
		return Ratio(needs / wants)
	case needs > 0:
		return Unbounded
	default:
		return 0
	}
}

func categoryOf(t model.Transaction) string {
	if t.Reason == "" {
		return otherCategory
	}
	return t.Reason
}

func paymentModeOf(t model.Transaction) string {
	if t.PaymentMode == "" {
		return unknownMode
	}
	return t.PaymentMode
}

func pieSlices(needs, wants, other float64) []Slice {
	slices := make([]Slice, 0, 3)
	for _, sl := range []Slice{
		{Name: SliceNeeds, Value: needs},
		{Name: SliceWants, Value: wants},
		{Name: SliceOther, Value: other},
	} {
		if sl.Value > 0 {
			slices = append(slices, sl)
		}
	}
	return slices
}

func dailySeries(w timewindow.Windows, all []model.Transaction) []DailyPoint {
	today := w.Today()
	points := make([]DailyPoint, 0, DailySeriesDays)
	for i := DailySeriesDays - 1; i >= 0; i-- {
		day := w.Day(today.AddDate(0, 0, -i))
		txns := aggregate.FilterWithin(all, day)
		points = append(points, DailyPoint{
			Date:    day.Start,
			Day:     day.Start.Format("Mon"),
			Expense: aggregate.Sum(aggregate.FilterByType(txns, model.TypeExpense)),
			Income:  aggregate.Sum(aggregate.FilterByType(txns, model.TypeIncome)),
		})
	}
	return points
}

func monthlyTrend(w timewindow.Windows, all []model.Transaction) []MonthPoint {
	points := make([]MonthPoint, 0, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		month := w.Month(i)
		txns := aggregate.FilterWithin(all, month)
		expense := aggregate.Sum(aggregate.FilterByType(txns, model.TypeExpense))
		income := aggregate.Sum(aggregate.FilterByType(txns, model.TypeIncome))
		points = append(points, MonthPoint{
			Start:   month.Start,
			Month:   month.Start.Format("Jan"),
			Expense: expense,
			Income:  income,
			Savings: income - expense,
		})
	}
	return points
}

// spanDays counts the calendar days from the earliest to the latest transaction,
// inclusive. Days without transactions inside the span count too.
func spanDays(loc *time.Location, txns []model.Transaction) int {
	if len(txns) == 0 {
		return 1
	}
	earliest, latest := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(earliest) {
			earliest = t.Date
		}
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return max(1, timewindow.DaysBetween(earliest.In(loc), latest.In(loc))+1)
}

func biggest(expenses []model.Transaction) *model.Transaction {
	if len(expenses) == 0 {
		return nil
	}
	best := expenses[0]
	for _, t := range expenses[1:] {
		if t.Amount > best.Amount {
			best = t
		}
	}
	return &best
}

// dailyTotals sums expenses per calendar day, in order of first appearance.
func dailyTotals(loc *time.Location, expenses []model.Transaction) []DayTotal {
	index := make(map[string]int)
	var days []DayTotal
	for _, t := range expenses {
		key := timewindow.DayKey(t.Date, loc)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DayTotal{Date: timewindow.StartOfDay(t.Date, loc), Key: key})
		}
		days[i].Total += t.Amount
	}
	return days
}

func bestAndWorst(days []DayTotal) (*DayTotal, *DayTotal) {
	if len(days) == 0 {
		return nil, nil
	}
	best, worst := days[0], days[0]
	for _, d := range days[1:] {
		if d.Total < best.Total {
			best = d
		}
		if d.Total > worst.Total {
			worst = d
		}
	}
	return &best, &worst
}
