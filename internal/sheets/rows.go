package sheets

import (
	"regexp"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/shopspring/decimal"
)

// Header is the first row of every export.
var Header = []any{"date", "reason", "amount", "paymentMode", "type", "necessity"}

// DateLayout is how dates appear in the sheet.
const DateLayout = "02/01/2006"

var sheetURLPattern = regexp.MustCompile(`^https://docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// FormatDate renders t as DD/MM/YYYY in loc. A nil loc keeps t's own location.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// FormatAmount renders an amount without trailing zeros, e.g. 100 -> "100", 100.5 -> "100.5".
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// PrepareRows turns transactions into sheet rows, header first, preserving input order.
// Necessity is blank for income and for uncategorized expenses.
func PrepareRows(txns []model.Transaction, loc *time.Location) [][]any {
	rows := make([][]any, 0, len(txns)+1)
	rows = append(rows, Header)
	for _, t := range txns {
		rows = append(rows, []any{
			FormatDate(t.Date, loc),
			t.Reason,
			FormatAmount(t.Amount),
			t.PaymentMode,
			string(t.Type),
			string(t.EffectiveNecessity()),
		})
	}
	return rows
}

// ExtractSheetID pulls the spreadsheet id out of a sharing URL.
func ExtractSheetID(url string) (string, bool) {
	m := sheetURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
