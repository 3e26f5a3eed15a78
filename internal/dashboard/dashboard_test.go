package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/aggregate"
	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/streak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainFormatter struct {
	hideLabels bool
}

func (plainFormatter) Amount(a float64) string { return fmt.Sprintf("$%.2f", a) }

func (p plainFormatter) Label(l string) string {
	if p.hideLabels {
		return "****"
	}
	return l
}

func fullSnapshot() analytics.Snapshot {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	other := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return analytics.Snapshot{
		PeriodTotal:       600,
		PeriodIncomeTotal: 2000,
		SavingsThisPeriod: 1400,
		SavingsRate:       70,
		PercentChange:     -20,
		BiggestExpense: &model.Transaction{
			ID: "2", Reason: "rent", Amount: 500, Date: day, PaymentMode: "Debit", Type: model.TypeExpense,
		},
		MostFrequentCategory: &analytics.CategoryCount{Name: "coffee shop", Count: 3},
		BestDay:              &analytics.DayTotal{Date: other, Key: "2024-03-01", Total: 100},
		WorstDay:             &analytics.DayTotal{Date: day, Key: "2024-03-02", Total: 500},
		TopCategories:        []aggregate.Bucket{{Label: "rent", Value: 500}, {Label: "coffee shop", Value: 100}},
		ByMode:               []aggregate.Bucket{{Label: "Debit", Value: 500}},
		PieData:              []analytics.Slice{{Name: analytics.SliceNeeds, Value: 500}},
		DailyData:            []analytics.DailyPoint{{Day: "Sat", Expense: 500}},
		MonthlyTrend:         []analytics.MonthPoint{{Month: "Mar", Expense: 600, Income: 2000, Savings: 1400}},
	}
}

func TestBuildCards_CoversRegistry(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: fullSnapshot(), Formatter: plainFormatter{}, PeriodText: "this month"})

	require.Len(t, specs, len(Registry))
	for _, id := range Registry {
		spec, ok := specs[id]
		require.True(t, ok, id)
		assert.Equal(t, id, spec.ID)
		card := spec.Render()
		require.NotNil(t, card, id)
		assert.Equal(t, spec.Type, card.Type(), id)
	}
}

func TestBuildCards_AbsentData(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: analytics.Snapshot{}, Formatter: plainFormatter{}})

	absent := []CardID{
		CardMostFrequent, CardBiggestExpense, CardBestDay, CardWorstDay,
		CardTopCategories, CardNeedsWants, CardPaymentMode,
	}
	for _, id := range absent {
		assert.Nil(t, specs[id].Render(), id)
	}

	present := []CardID{CardSpent, CardIncome, CardSavings, CardLastMonth, CardNoExpenseStreak}
	for _, id := range present {
		assert.NotNil(t, specs[id].Render(), id)
	}
}

func TestBuildCards_Pure(t *testing.T) {
	ctx := BuildContext{Snapshot: fullSnapshot(), Formatter: plainFormatter{}, PeriodText: "this month"}

	a := BuildCards(ctx)
	b := BuildCards(ctx)

	for _, id := range Registry {
		assert.Equal(t, a[id].Render(), b[id].Render(), id)
	}
}

func TestBuildCards_Content(t *testing.T) {
	specs := BuildCards(BuildContext{
		Snapshot:   fullSnapshot(),
		Streaks:    streak.Data{NoExpenseStreak: 1},
		Formatter:  plainFormatter{},
		PeriodText: "this month",
	})

	spent := specs[CardSpent].Render().(StatCard)
	assert.Equal(t, "$600.00", spent.Value)
	require.NotNil(t, spent.Trend)
	assert.True(t, spent.Trend.Good)

	savings := specs[CardSavings].Render().(StatCard)
	assert.Equal(t, "+$1400.00", savings.Value)
	assert.Equal(t, "70% savings rate", savings.Subtitle)

	streakCard := specs[CardNoExpenseStreak].Render().(InsightCard)
	assert.Equal(t, "1 day", streakCard.Value)

	frequent := specs[CardMostFrequent].Render().(InsightCard)
	assert.Equal(t, "Coffee Shop", frequent.Value)
	assert.Equal(t, "3 times this month", frequent.Subtitle)

	biggest := specs[CardBiggestExpense].Render().(InsightCard)
	assert.Equal(t, "Rent", biggest.Detail)
	assert.Equal(t, "Mar 2 via Debit", biggest.Subtitle)
	assert.True(t, IsFullWidth(specs[CardBiggestExpense]))

	trend := specs[CardMonthlyTrend].Render().(ChartCard)
	assert.Equal(t, []string{SeriesIncome, SeriesExpense, SeriesSavings}, trend.Series)
	require.Len(t, trend.Rows, 1)
	assert.Len(t, trend.Rows[0].Values, 3)
}

func TestBuildCards_NegativeSavings(t *testing.T) {
	snap := analytics.Snapshot{SavingsThisPeriod: -50, SavingsRate: -10}

	card := BuildCards(BuildContext{Snapshot: snap, Formatter: plainFormatter{}})[CardSavings].Render().(StatCard)

	assert.Equal(t, "-$50.00", card.Value)
	assert.Equal(t, ToneExpense, card.Tone)
	assert.Equal(t, "0% savings rate", card.Subtitle)
}

func TestBuildCards_MasksLabels(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: fullSnapshot(), Formatter: plainFormatter{hideLabels: true}})

	assert.Equal(t, "****", specs[CardMostFrequent].Render().(InsightCard).Value)
	top := specs[CardTopCategories].Render().(ChartCard)
	for _, row := range top.Rows {
		assert.Equal(t, "****", row.Label)
	}
}

func TestBuildCards_SingleDaySuppressesWorst(t *testing.T) {
	snap := fullSnapshot()
	snap.WorstDay = &analytics.DayTotal{Key: snap.BestDay.Key, Total: snap.BestDay.Total}

	specs := BuildCards(BuildContext{Snapshot: snap, Formatter: plainFormatter{}})

	assert.NotNil(t, specs[CardBestDay].Render())
	assert.Nil(t, specs[CardWorstDay].Render())
}

func TestIsFullWidth(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: fullSnapshot(), Formatter: plainFormatter{}})

	assert.True(t, IsFullWidth(specs[CardDailyChart]))
	assert.True(t, IsFullWidth(specs[CardLastMonth]))
	assert.False(t, IsFullWidth(specs[CardSpent]))
}

func TestAssemble_SkipsUnknownAndAbsent(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: analytics.Snapshot{}, Formatter: plainFormatter{}})

	got := Assemble([]string{"spent", "retired-card", "biggest-expense", "income"}, specs)

	require.Len(t, got, 2)
	assert.Equal(t, CardSpent, got[0].Spec.ID)
	assert.Equal(t, CardIncome, got[1].Spec.ID)
}

func TestIDs(t *testing.T) {
	ids := IDs()
	require.Len(t, ids, len(Registry))
	assert.Equal(t, "spent", ids[0])
	assert.True(t, IsKnown("needs-wants"))
	assert.False(t, IsKnown("streak"))
}

func TestRenderer_Render(t *testing.T) {
	specs := BuildCards(BuildContext{Snapshot: fullSnapshot(), Formatter: plainFormatter{}, PeriodText: "this month"})
	cards := Assemble(IDs(), specs)

	out := NewRenderer(100, DefaultStyles()).Render(cards, 0)

	for _, want := range []string{"SPENT", "$600.00", "Top Spending", "6 Month Overview", "BIGGEST EXPENSE", "vs last month"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderer_RenderCardVariants(t *testing.T) {
	r := NewRenderer(0, DefaultStyles())

	assert.Contains(t, r.RenderCard(StatCard{Label: "Spent", Value: "$1"}, 30), "$1")
	assert.Contains(t, r.RenderCard(InsightCard{Label: "Avg", Value: "$2", Detail: "Rent"}, 30), "Rent")
	chart := r.RenderCard(ChartCard{
		Title:  "Chart",
		Series: []string{SeriesAmount},
		Rows:   []ChartRow{{Label: "a very long category name", Values: []ChartValue{{Series: SeriesAmount, Amount: 5, Display: "$5"}}}},
	}, 40)
	assert.Contains(t, chart, "Chart")
	assert.Contains(t, chart, "…")
}

func TestBuildCards_NeedsWantsRatio(t *testing.T) {
	tests := []struct {
		name  string
		needs float64
		wants float64
		want  string
	}{
		{name: "wants only", needs: 0, wants: 40, want: "needs : wants  0.00 : 1"},
		{name: "both", needs: 50, wants: 100, want: "needs : wants  0.50 : 1"},
		{name: "no wants", needs: 100, wants: 0, want: "needs : wants  ∞ : 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := analytics.Snapshot{
				NeedsTotal:      tt.needs,
				WantsTotal:      tt.wants,
				NeedsWantsRatio: analytics.NeedsWantsRatio(tt.needs, tt.wants),
				PieData:         []analytics.Slice{{Name: analytics.SliceNeeds, Value: tt.needs}, {Name: analytics.SliceWants, Value: tt.wants}},
			}
			card := BuildCards(BuildContext{Snapshot: snap, Formatter: plainFormatter{}})[CardNeedsWants].Render().(ChartCard)
			assert.Equal(t, tt.want, card.Subtitle)
			assert.Contains(t, NewRenderer(0, DefaultStyles()).RenderCard(card, 40), tt.want)
		})
	}
}

func TestBuildCards_NeedsWantsOnlyUncategorized(t *testing.T) {
	snap := analytics.Snapshot{Uncategorized: 30, PieData: []analytics.Slice{{Name: analytics.SliceOther, Value: 30}}}

	card := BuildCards(BuildContext{Snapshot: snap, Formatter: plainFormatter{}})[CardNeedsWants].Render().(ChartCard)

	assert.Empty(t, card.Subtitle)
}
