package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/shopspring/decimal"
)

// parseQuickAdd reads entries like "12.50 lunch #want @cc". A leading "+" on the
// amount records income. "#need" and "#want" set the necessity and "@mode" the
// payment mode, resolved through its shorthand.
func parseQuickAdd(input string, modes []model.PaymentMode, now time.Time) (model.Transaction, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: empty entry", model.ErrInvalidTransaction)
	}

	txn := model.Transaction{Date: now, Type: model.TypeExpense}
	raw := fields[0]
	if strings.HasPrefix(raw, "+") {
		txn.Type = model.TypeIncome
		raw = raw[1:]
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: amount %q", model.ErrInvalidTransaction, fields[0])
	}
	txn.Amount = amount.Round(2).InexactFloat64()

	var reason []string
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "#"):
			n, err := model.ParseNecessity(f[1:])
			if err != nil {
				return model.Transaction{}, err
			}
			txn.Necessity = n
		case strings.HasPrefix(f, "@") && len(f) > 1:
			txn.PaymentMode = model.ResolvePaymentMode(modes, f[1:])
		default:
			reason = append(reason, f)
		}
	}
	txn.Reason = strings.Join(reason, " ")
	if txn.Type == model.TypeIncome {
		txn.Necessity = model.NecessityNone
	}
	return txn, nil
}
