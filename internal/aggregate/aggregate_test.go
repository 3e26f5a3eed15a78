package aggregate

import (
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id string, typ model.TransactionType, amount float64, day int, reason string) model.Transaction {
	return model.Transaction{
		ID:     id,
		Type:   typ,
		Amount: amount,
		Date:   time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
		Reason: reason,
	}
}

func byReason(t model.Transaction) string { return t.Reason }

func TestFilterByType_PreservesOrder(t *testing.T) {
	txns := []model.Transaction{
		txn("a", model.TypeExpense, 10, 1, ""),
		txn("b", model.TypeIncome, 20, 2, ""),
		txn("c", model.TypeExpense, 30, 3, ""),
	}

	got := FilterByType(txns, model.TypeExpense)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestSum_ExpensePlusIncomeEqualsTotal(t *testing.T) {
	sets := [][]model.Transaction{
		{txn("a", model.TypeExpense, 10.25, 1, "")},
		{txn("a", model.TypeIncome, 1000, 1, ""), txn("b", model.TypeExpense, 0, 2, "")},
		{
			txn("a", model.TypeExpense, 12.5, 1, ""),
			txn("b", model.TypeIncome, 2000, 2, ""),
			txn("c", model.TypeExpense, 87.5, 3, ""),
			txn("d", model.TypeIncome, 0.5, 4, ""),
		},
	}

	for _, txns := range sets {
		expense := Sum(FilterByType(txns, model.TypeExpense))
		income := Sum(FilterByType(txns, model.TypeIncome))
		assert.InDelta(t, Sum(txns), expense+income, 1e-9)
	}
}

func TestSum_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Sum(nil))
	assert.Equal(t, 0.0, Sum([]model.Transaction{}))
}

func TestFilterByDateRange_IsInclusive(t *testing.T) {
	txns := []model.Transaction{
		txn("before", model.TypeExpense, 1, 1, ""),
		txn("start", model.TypeExpense, 1, 2, ""),
		txn("end", model.TypeExpense, 1, 3, ""),
		txn("after", model.TypeExpense, 1, 4, ""),
	}
	start := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

	got := FilterByDateRange(txns, start, end)
	require.Len(t, got, 2)
	assert.Equal(t, "start", got[0].ID)
	assert.Equal(t, "end", got[1].ID)
}

func TestFilterWithin_IsHalfOpen(t *testing.T) {
	txns := []model.Transaction{
		{ID: "in", Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		{ID: "out", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	r := timewindow.Range{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	got := FilterWithin(txns, r)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
}

func TestFilterByNecessity_IgnoresIncome(t *testing.T) {
	income := txn("i", model.TypeIncome, 100, 1, "")
	income.Necessity = model.NecessityNeed
	need := txn("n", model.TypeExpense, 10, 1, "")
	need.Necessity = model.NecessityNeed
	none := txn("x", model.TypeExpense, 5, 1, "")

	txns := []model.Transaction{income, need, none}

	assert.Equal(t, 10.0, Sum(FilterByNecessity(txns, model.NecessityNeed)))
	assert.Equal(t, 5.0, Sum(FilterByNecessity(txns, model.NecessityNone)))
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{name: "zero baseline", current: 500, previous: 0, want: 0},
		{name: "both zero", current: 0, previous: 0, want: 0},
		{name: "negative baseline", current: 10, previous: -5, want: 0},
		{name: "increase", current: 150, previous: 100, want: 50},
		{name: "decrease", current: 50, previous: 200, want: -75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestAggregateByKey_CaseInsensitiveFirstSeenLabel(t *testing.T) {
	txns := []model.Transaction{
		txn("1", model.TypeExpense, 10, 1, "Food"),
		txn("2", model.TypeExpense, 20, 2, "food"),
		txn("3", model.TypeExpense, 30, 3, "FOOD"),
	}

	got := AggregateByKey(txns, byReason)

	assert.Equal(t, map[string]float64{"Food": 60}, got.Map())
	assert.Equal(t, 1, got.Len())
}

func TestAggregateByKey_LabelFollowsInputOrderNotSortOrder(t *testing.T) {
	txns := []model.Transaction{
		txn("1", model.TypeExpense, 5, 1, "grocery"),
		txn("2", model.TypeExpense, 7, 2, "Grocery"),
		txn("3", model.TypeExpense, 3, 3, "Rent"),
	}

	got := AggregateByKey(txns, byReason)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, Bucket{Label: "grocery", Value: 12}, got.At(0))
	assert.Equal(t, Bucket{Label: "Rent", Value: 3}, got.At(1))

	b, ok := got.Get("GROCERY")
	require.True(t, ok)
	assert.Equal(t, 12.0, b.Value)
}

func TestBuckets_ReturnsCopies(t *testing.T) {
	got := AggregateByKey([]model.Transaction{txn("1", model.TypeExpense, 10, 1, "Food")}, byReason)

	entries := got.Entries()
	entries[0].Value = 999
	m := got.Map()
	m["Food"] = 999

	assert.Equal(t, 10.0, got.At(0).Value)
}

func TestBuckets_RankedIsStable(t *testing.T) {
	txns := []model.Transaction{
		txn("1", model.TypeExpense, 10, 1, "A"),
		txn("2", model.TypeExpense, 30, 1, "B"),
		txn("3", model.TypeExpense, 10, 1, "C"),
		txn("4", model.TypeExpense, 30, 1, "D"),
		txn("5", model.TypeExpense, 5, 1, "E"),
		txn("6", model.TypeExpense, 1, 1, "F"),
	}

	ranked := AggregateByKey(txns, byReason).Ranked(5)
	labels := make([]string, len(ranked))
	for i, b := range ranked {
		labels[i] = b.Label
	}

	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, labels)
}

func TestCountByKey_Top(t *testing.T) {
	txns := []model.Transaction{
		txn("1", model.TypeExpense, 100, 1, "Coffee"),
		txn("2", model.TypeExpense, 500, 2, "Rent"),
		txn("3", model.TypeExpense, 5, 3, "coffee"),
	}

	top, ok := CountByKey(txns, byReason).Top()
	require.True(t, ok)
	assert.Equal(t, Bucket{Label: "Coffee", Value: 2}, top)

	_, ok = CountByKey(nil, byReason).Top()
	assert.False(t, ok)
}
