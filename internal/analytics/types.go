package analytics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/Veraticus/budgly/internal/aggregate"
	"github.com/Veraticus/budgly/internal/model"
)

// Ratio is a non-negative ratio where +Inf means "unbounded".
type Ratio float64

// Unbounded is the ratio reported when the denominator is zero but the numerator is not.
var Unbounded = Ratio(math.Inf(1))

// IsUnbounded reports whether r is the unbounded sentinel.
func (r Ratio) IsUnbounded() bool {
	return math.IsInf(float64(r), 1)
}

// MarshalJSON encodes the unbounded sentinel as the string "unbounded".
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsUnbounded() {
		return []byte(`"unbounded"`), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON accepts either a number or "unbounded".
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == `"unbounded"` {
		*r = Unbounded
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// DailyPoint is one calendar day of the trailing seven day series.
type DailyPoint struct {
	Date    time.Time `json:"date"`
	Day     string    `json:"day"`
	Expense float64   `json:"expense"`
	Income  float64   `json:"income"`
}

// MonthPoint is one calendar month of the six month trend.
type MonthPoint struct {
	Start   time.Time `json:"start"`
	Month   string    `json:"month"`
	Expense float64   `json:"expense"`
	Income  float64   `json:"income"`
	Savings float64   `json:"savings"`
}

// DayTotal is the expense total of a single calendar day.
type DayTotal struct {
	Date  time.Time `json:"date"`
	Key   string    `json:"key"`
	Total float64   `json:"total"`
}

// CategoryCount is a category label with the number of expenses filed under it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Slice is one segment of the needs, wants and other breakdown.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Slice names.
const (
	SliceNeeds = "Needs"
	SliceWants = "Wants"
	SliceOther = "Other"
)

// Snapshot is the full set of derived metrics for one transaction set and period.
// It is rebuilt from scratch on every computation and never patched.
type Snapshot struct {
	BiggestExpense       *model.Transaction `json:"biggestExpense"`
	MostFrequentCategory *CategoryCount     `json:"mostFrequentCategory"`
	BestDay              *DayTotal          `json:"bestDay"`
	WorstDay             *DayTotal          `json:"worstDay"`

	TopCategories []aggregate.Bucket `json:"topCategories"`
	ByMode        []aggregate.Bucket `json:"byMode"`
	DailyData     []DailyPoint       `json:"dailyData"`
	MonthlyTrend  []MonthPoint       `json:"monthlyTrend"`
	PieData       []Slice            `json:"pieData"`

	PeriodTotal       float64 `json:"periodTotal"`
	LastMonthTotal    float64 `json:"lastMonthTotal"`
	PeriodIncomeTotal float64 `json:"periodIncomeTotal"`
	PercentChange     float64 `json:"percentChange"`

	NeedsTotal      float64 `json:"needsTotal"`
	WantsTotal      float64 `json:"wantsTotal"`
	Uncategorized   float64 `json:"uncategorized"`
	NeedsWantsRatio Ratio   `json:"needsWantsRatio"`

	SavingsThisPeriod float64 `json:"savingsThisPeriod"`
	SavingsRate       float64 `json:"savingsRate"`

	ThisWeekTotal float64 `json:"thisWeekTotal"`
	LastWeekTotal float64 `json:"lastWeekTotal"`
	WeekChange    float64 `json:"weekChange"`

	AvgDailySpending   float64 `json:"avgDailySpending"`
	AvgTransactionSize float64 `json:"avgTransactionSize"`
	TransactionCount   int     `json:"transactionCount"`
	UniqueSpendingDays int     `json:"uniqueSpendingDays"`

	// Skipped counts transactions dropped because they could not be aggregated.
	Skipped int `json:"skipped"`
}

// SameBestAndWorstDay reports whether the best and worst day are one and the same,
// in which case showing both is redundant.
func (s Snapshot) SameBestAndWorstDay() bool {
	return s.BestDay != nil && s.WorstDay != nil && s.BestDay.Key == s.WorstDay.Key
}
