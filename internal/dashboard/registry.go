package dashboard

import (
	"fmt"
	"math"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/streak"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Formatter turns amounts and free-text labels into display strings,
// masking them when privacy mode is on.
type Formatter interface {
	Amount(amount float64) string
	Label(label string) string
}

// BuildContext is everything a card may draw from.
type BuildContext struct {
	Formatter  Formatter
	PeriodText string
	Snapshot   analytics.Snapshot
	Streaks    streak.Data
}

// Series names used by chart cards.
const (
	SeriesExpense = "expense"
	SeriesIncome  = "income"
	SeriesSavings = "savings"
	SeriesAmount  = "amount"
)

// BuildCards returns a Spec for every registered card. It has no side effects:
// the same context always yields the same cards.
func BuildCards(ctx BuildContext) map[CardID]Spec {
	s := ctx.Snapshot
	f := ctx.Formatter
	label := func(l string) string { return f.Label(titleCaser.String(l)) }

	specs := []Spec{
		{ID: CardSpent, Type: TypeStat, Render: func() Card {
			return StatCard{
				Label: "Spent",
				Value: f.Amount(s.PeriodTotal),
				Tone:  ToneExpense,
				Trend: &Trend{Value: s.PercentChange, Label: "vs last month", Good: s.PercentChange <= 0},
			}
		}},
		{ID: CardIncome, Type: TypeStat, Render: func() Card {
			return StatCard{
				Label:    "Income",
				Value:    f.Amount(s.PeriodIncomeTotal),
				Subtitle: "Filtered results",
				Tone:     ToneIncome,
			}
		}},
		{ID: CardSavings, Type: TypeStat, Render: func() Card {
			sign, tone := "+", ToneIncome
			if s.SavingsThisPeriod < 0 {
				sign, tone = "-", ToneExpense
			}
			return StatCard{
				Label:    "Savings",
				Value:    sign + f.Amount(math.Abs(s.SavingsThisPeriod)),
				Subtitle: fmt.Sprintf("%.0f%% savings rate", math.Max(s.SavingsRate, 0)),
				Tone:     tone,
			}
		}},
		{ID: CardThisWeek, Type: TypeStat, Render: func() Card {
			return StatCard{
				Label: "This Week",
				Value: f.Amount(s.ThisWeekTotal),
				Tone:  ToneNeutral,
				Trend: &Trend{Value: s.WeekChange, Label: "vs last week", Good: s.WeekChange <= 0},
			}
		}},
		{ID: CardDailyAvg, Type: TypeStat, Render: func() Card {
			return StatCard{
				Label:    "Daily Avg",
				Value:    f.Amount(s.AvgDailySpending),
				Subtitle: "Per day " + ctx.PeriodText,
				Tone:     ToneNeutral,
			}
		}},
		{ID: CardAvgTxn, Type: TypeInsight, Render: func() Card {
			return InsightCard{
				Label:    "Avg/Txn",
				Value:    f.Amount(s.AvgTransactionSize),
				Subtitle: "Per transaction",
				Tone:     ToneNeutral,
			}
		}},
		{ID: CardNoExpenseStreak, Type: TypeInsight, Render: func() Card {
			return InsightCard{
				Label:    "No-Expense Streak",
				Value:    days(ctx.Streaks.NoExpenseStreak),
				Subtitle: "Days without spending",
				Tone:     ToneIncome,
			}
		}},
		{ID: CardSpendingStreak, Type: TypeInsight, Render: func() Card {
			return InsightCard{
				Label:    "Spending Streak",
				Value:    days(ctx.Streaks.SpendingStreak),
				Subtitle: "Consecutive spending",
				Tone:     ToneNeutral,
			}
		}},
		{ID: CardActiveDays, Type: TypeInsight, Render: func() Card {
			return InsightCard{
				Label:    "Active Days",
				Value:    fmt.Sprint(s.UniqueSpendingDays),
				Subtitle: "Days with expenses",
				Tone:     ToneNeutral,
			}
		}},
		{ID: CardMostFrequent, Type: TypeInsight, Render: func() Card {
			mf := s.MostFrequentCategory
			if mf == nil {
				return nil
			}
			return InsightCard{
				Label:    "Most Frequent",
				Value:    label(mf.Name),
				Subtitle: fmt.Sprintf("%d times %s", mf.Count, ctx.PeriodText),
				Tone:     ToneNeutral,
			}
		}},
		{ID: CardBiggestExpense, Type: TypeInsight, FullWidth: true, Render: func() Card {
			b := s.BiggestExpense
			if b == nil {
				return nil
			}
			reason := b.Reason
			if reason == "" {
				reason = "Unknown"
			}
			sub := b.Date.Format("Jan 2")
			if b.PaymentMode != "" {
				sub += " via " + b.PaymentMode
			}
			return InsightCard{
				Label:    "Biggest Expense",
				Detail:   label(reason),
				Value:    f.Amount(b.Amount),
				Subtitle: sub,
				Tone:     ToneExpense,
			}
		}},
		{ID: CardBestDay, Type: TypeInsight, Render: func() Card {
			if s.BestDay == nil {
				return nil
			}
			return InsightCard{
				Label:    "Best Day",
				Value:    f.Amount(s.BestDay.Total),
				Subtitle: s.BestDay.Date.Format("Jan 2"),
				Tone:     ToneIncome,
			}
		}},
		{ID: CardWorstDay, Type: TypeInsight, Render: func() Card {
			// A single spending day is both best and worst; show it once.
			if s.WorstDay == nil || s.SameBestAndWorstDay() {
				return nil
			}
			return InsightCard{
				Label:    "Worst Day",
				Value:    f.Amount(s.WorstDay.Total),
				Subtitle: s.WorstDay.Date.Format("Jan 2"),
				Tone:     ToneExpense,
			}
		}},
		{ID: CardDailyChart, Type: TypeChart, Render: func() Card {
			rows := make([]ChartRow, 0, len(s.DailyData))
			for _, d := range s.DailyData {
				rows = append(rows, ChartRow{Label: d.Day, Values: []ChartValue{
					{Series: SeriesExpense, Amount: d.Expense, Display: f.Amount(d.Expense)},
					{Series: SeriesIncome, Amount: d.Income, Display: f.Amount(d.Income)},
				}})
			}
			return ChartCard{Title: "Last 7 Days", Series: []string{SeriesExpense, SeriesIncome}, Rows: rows}
		}},
		{ID: CardTopCategories, Type: TypeChart, Render: func() Card {
			if len(s.TopCategories) == 0 {
				return nil
			}
			rows := make([]ChartRow, 0, len(s.TopCategories))
			for _, c := range s.TopCategories {
				rows = append(rows, ChartRow{Label: label(c.Label), Values: []ChartValue{
					{Series: SeriesAmount, Amount: c.Value, Display: f.Amount(c.Value)},
				}})
			}
			return ChartCard{Title: "Top Spending", Series: []string{SeriesAmount}, Rows: rows}
		}},
		{ID: CardNeedsWants, Type: TypeChart, Render: func() Card {
			if len(s.PieData) == 0 {
				return nil
			}
			rows := make([]ChartRow, 0, len(s.PieData))
			for _, sl := range s.PieData {
				rows = append(rows, ChartRow{Label: f.Label(sl.Name), Values: []ChartValue{
					{Series: SeriesAmount, Amount: sl.Value, Display: f.Amount(sl.Value)},
				}})
			}
			card := ChartCard{Title: "Needs vs Wants", Series: []string{SeriesAmount}, Rows: rows}
			if s.NeedsTotal > 0 || s.WantsTotal > 0 {
				card.Subtitle = "needs : wants  " + ratioText(s.NeedsWantsRatio)
			}
			return card
		}},
		{ID: CardPaymentMode, Type: TypeChart, Render: func() Card {
			if len(s.ByMode) == 0 {
				return nil
			}
			rows := make([]ChartRow, 0, len(s.ByMode))
			for _, m := range s.ByMode {
				rows = append(rows, ChartRow{Label: m.Label, Values: []ChartValue{
					{Series: SeriesAmount, Amount: m.Value, Display: f.Amount(m.Value)},
				}})
			}
			return ChartCard{Title: "By Payment Mode", Series: []string{SeriesAmount}, Rows: rows}
		}},
		{ID: CardMonthlyTrend, Type: TypeChart, Render: func() Card {
			rows := make([]ChartRow, 0, len(s.MonthlyTrend))
			for _, m := range s.MonthlyTrend {
				rows = append(rows, ChartRow{Label: m.Month, Values: []ChartValue{
					{Series: SeriesIncome, Amount: m.Income, Display: f.Amount(m.Income)},
					{Series: SeriesExpense, Amount: m.Expense, Display: f.Amount(m.Expense)},
					{Series: SeriesSavings, Amount: m.Savings, Display: f.Amount(m.Savings)},
				}})
			}
			return ChartCard{
				Title:  "6 Month Overview",
				Series: []string{SeriesIncome, SeriesExpense, SeriesSavings},
				Rows:   rows,
			}
		}},
		{ID: CardLastMonth, Type: TypeStat, FullWidth: true, Render: func() Card {
			return StatCard{
				Label:    "Last Month",
				Value:    f.Amount(s.LastMonthTotal),
				Subtitle: "Total spent",
				Tone:     ToneNeutral,
				Trend:    &Trend{Value: s.PercentChange, Label: "this period vs last month", Good: s.PercentChange <= 0},
			}
		}},
	}

	cards := make(map[CardID]Spec, len(specs))
	for _, spec := range specs {
		cards[spec.ID] = spec
	}
	return cards
}

// ratioText shows r against one unit of wants. The unbounded ratio has no number.
func ratioText(r analytics.Ratio) string {
	if r.IsUnbounded() {
		return "∞ : 1"
	}
	return fmt.Sprintf("%.2f : 1", float64(r))
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Rendered is a card that produced output, paired with its spec.
type Rendered struct {
	Card Card
	Spec Spec
}

// Assemble renders ids in order. Ids without a spec and specs that render nothing
// are skipped without error.
func Assemble(ids []string, specs map[CardID]Spec) []Rendered {
	out := make([]Rendered, 0, len(ids))
	for _, id := range ids {
		spec, ok := specs[CardID(id)]
		if !ok || spec.Render == nil {
			continue
		}
		card := spec.Render()
		if card == nil {
			continue
		}
		out = append(out, Rendered{Spec: spec, Card: card})
	}
	return out
}
