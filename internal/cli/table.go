package cli

import (
	"strings"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formatter renders amounts and labels for display.
type Formatter interface {
	Amount(amount float64) string
	Label(label string) string
}

// DateLayout is how transaction dates are shown in tables.
const DateLayout = "2006-01-02"

// TransactionTable renders txns as a bordered table. Ids are shortened to their
// first eight characters, which is enough to address them in update and delete.
func TransactionTable(txns []model.Transaction, f Formatter) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "DATE", "TYPE", "REASON", "MODE", "NEED", "AMOUNT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 6 && row >= 0 && row < len(txns) {
				if txns[row].IsExpense() {
					return ExpenseStyle.PaddingRight(2)
				}
				return IncomeStyle.PaddingRight(2)
			}
			return TableCellStyle
		})

	for _, txn := range txns {
		t.Row(
			ShortID(txn.ID),
			txn.Date.Format(DateLayout),
			string(txn.Type),
			f.Label(txn.Reason),
			txn.PaymentMode,
			string(txn.EffectiveNecessity()),
			f.Amount(txn.Amount),
		)
	}
	return t.Render()
}

// ShortID trims an id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// MatchID finds the transaction whose id equals or starts with prefix. An ambiguous
// prefix matches nothing.
func MatchID(txns []model.Transaction, prefix string) (model.Transaction, bool) {
	var found *model.Transaction
	for i := range txns {
		if txns[i].ID == prefix {
			return txns[i], true
		}
		if strings.HasPrefix(txns[i].ID, prefix) {
			if found != nil {
				return model.Transaction{}, false
			}
			found = &txns[i]
		}
	}
	if found == nil || prefix == "" {
		return model.Transaction{}, false
	}
	return *found, true
}
