// Package dashboard maps analytics fields onto independently renderable cards.
//
// Every card has a stable CardID. BuildCards produces a fresh Spec per id from a
// BuildContext; a Spec whose data is missing renders to nil and is skipped.
package dashboard

// CardID identifies a card. Values are persisted in the layout and must not change.
type CardID string

// Known cards.
const (
	CardSpent           CardID = "spent"
	CardIncome          CardID = "income"
	CardSavings         CardID = "savings"
	CardThisWeek        CardID = "this-week"
	CardDailyAvg        CardID = "daily-avg"
	CardAvgTxn          CardID = "avg-txn"
	CardNoExpenseStreak CardID = "no-expense-streak"
	CardSpendingStreak  CardID = "spending-streak"
	CardActiveDays      CardID = "active-days"
	CardMostFrequent    CardID = "most-frequent"
	CardBiggestExpense  CardID = "biggest-expense"
	CardBestDay         CardID = "best-day"
	CardWorstDay        CardID = "worst-day"
	CardDailyChart      CardID = "daily-chart"
	CardTopCategories   CardID = "top-categories"
	CardNeedsWants      CardID = "needs-wants"
	CardPaymentMode     CardID = "payment-mode"
	CardMonthlyTrend    CardID = "monthly-trend"
	CardLastMonth       CardID = "last-month"
)

// Registry lists every card in default display order.
var Registry = []CardID{
	CardSpent,
	CardIncome,
	CardSavings,
	CardThisWeek,
	CardDailyAvg,
	CardAvgTxn,
	CardNoExpenseStreak,
	CardSpendingStreak,
	CardActiveDays,
	CardMostFrequent,
	CardBiggestExpense,
	CardBestDay,
	CardWorstDay,
	CardDailyChart,
	CardTopCategories,
	CardNeedsWants,
	CardPaymentMode,
	CardMonthlyTrend,
	CardLastMonth,
}

// IDs returns the registry as plain strings, as the layout stores them.
func IDs() []string {
	ids := make([]string, len(Registry))
	for i, id := range Registry {
		ids[i] = string(id)
	}
	return ids
}

// IsKnown reports whether id names a registered card.
func IsKnown(id string) bool {
	for _, c := range Registry {
		if string(c) == id {
			return true
		}
	}
	return false
}

// CardType is the visual variant of a card.
type CardType string

// Card types.
const (
	TypeStat    CardType = "stat"
	TypeInsight CardType = "insight"
	TypeChart   CardType = "chart"
)

// Tone colors a value.
type Tone string

// Tones.
const (
	ToneNeutral Tone = "neutral"
	ToneIncome  Tone = "income"
	ToneExpense Tone = "expense"
)

// Card is rendered output of one Spec. It is one of StatCard, InsightCard or ChartCard.
type Card interface {
	Type() CardType
	isCard()
}

// Trend is a percent change shown under a stat.
type Trend struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	// Good is true when the change is desirable, e.g. spending went down.
	Good bool `json:"good"`
}

// StatCard is a headline number.
type StatCard struct {
	Trend    *Trend `json:"trend,omitempty"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle,omitempty"`
	Tone     Tone   `json:"tone"`
}

func (StatCard) isCard() {}

// Type implements Card.
func (StatCard) Type() CardType { return TypeStat }

// InsightCard is a smaller derived fact with an optional detail line.
type InsightCard struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Detail   string `json:"detail,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Tone     Tone   `json:"tone"`
}

func (InsightCard) isCard() {}

// Type implements Card.
func (InsightCard) Type() CardType { return TypeInsight }

// ChartValue is one series value in a chart row.
type ChartValue struct {
	Series  string  `json:"series"`
	Display string  `json:"display"`
	Amount  float64 `json:"amount"`
}

// ChartRow is one labelled group of values, e.g. a day or a category.
type ChartRow struct {
	Label  string       `json:"label"`
	Values []ChartValue `json:"values"`
}

// ChartCard is a small series. Series names the values present in every row.
type ChartCard struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	Series   []string   `json:"series"`
	Rows     []ChartRow `json:"rows"`
}

func (ChartCard) isCard() {}

// Type implements Card.
func (ChartCard) Type() CardType { return TypeChart }

// Spec describes a card. Render returns nil when the card has nothing to show.
type Spec struct {
	Render    func() Card
	ID        CardID
	Type      CardType
	FullWidth bool
}

// IsFullWidth reports whether the card spans the whole row. Charts always do.
func IsFullWidth(s Spec) bool {
	return s.FullWidth || s.Type == TypeChart
}
