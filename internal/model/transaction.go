// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// TransactionType says which side of the ledger a transaction sits on.
type TransactionType string

const (
	// TypeExpense is money going out.
	TypeExpense TransactionType = "expense"
	// TypeIncome is money coming in.
	TypeIncome TransactionType = "income"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Necessity classifies an expense as a need or a want. The zero value means uncategorized.
type Necessity string

const (
	// NecessityNone marks an expense that was never classified.
	NecessityNone Necessity = ""
	// NecessityNeed marks an essential expense.
	NecessityNeed Necessity = "need"
	// NecessityWant marks a discretionary expense.
	NecessityWant Necessity = "want"
)

// Valid reports whether n is a known necessity value.
func (n Necessity) Valid() bool {
	return n == NecessityNone || n == NecessityNeed || n == NecessityWant
}

// ParseTransactionType parses a user supplied type, accepting common shorthands.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "exp", "e", "spent":
		return TypeExpense, nil
	case "income", "inc", "i", "earned":
		return TypeIncome, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
}

// ParseNecessity parses a user supplied necessity. Empty input means uncategorized.
func ParseNecessity(s string) (Necessity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "-":
		return NecessityNone, nil
	case "need", "n":
		return NecessityNeed, nil
	case "want", "w":
		return NecessityWant, nil
	default:
		return "", fmt.Errorf("%w: unknown necessity %q", ErrInvalidTransaction, s)
	}
}

// ErrInvalidTransaction is returned when a transaction fails validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is a single expense or income record.
// Values are treated as immutable once handed to analytics; edits go through Apply.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Necessity   Necessity       `json:"necessity,omitempty"`
	Reason      string          `json:"reason"`
	PaymentMode string          `json:"paymentMode"`
	Amount      float64         `json:"amount"`
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// EffectiveNecessity returns the necessity that counts for aggregation.
// Income never carries a necessity.
func (t Transaction) EffectiveNecessity() Necessity {
	if t.Type != TypeExpense {
		return NecessityNone
	}
	return t.Necessity
}

// Validate checks the transaction at ingestion time.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return fmt.Errorf("%w: amount is not a number", ErrInvalidTransaction)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: negative amount %v", ErrInvalidTransaction, t.Amount)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if !t.Necessity.Valid() {
		return fmt.Errorf("%w: unknown necessity %q", ErrInvalidTransaction, t.Necessity)
	}
	return nil
}

// Usable reports whether the transaction can take part in aggregation.
// Unlike Validate it does not care about the ID.
func (t Transaction) Usable() bool {
	if t.Date.IsZero() || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount < 0 {
		return false
	}
	return t.Type.Valid()
}

// TransactionUpdate carries a partial edit. Nil fields are left untouched.
type TransactionUpdate struct {
	Date        *time.Time       `json:"date,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Necessity   *Necessity       `json:"necessity,omitempty"`
	Reason      *string          `json:"reason,omitempty"`
	PaymentMode *string          `json:"paymentMode,omitempty"`
	Amount      *float64         `json:"amount,omitempty"`
}

// Apply merges the update over t and returns the new record. t itself is not modified.
func (u TransactionUpdate) Apply(t Transaction) Transaction {
	out := t
	if u.Date != nil {
		out.Date = *u.Date
	}
	if u.Type != nil {
		out.Type = *u.Type
	}
	if u.Necessity != nil {
		out.Necessity = *u.Necessity
	}
	if u.Reason != nil {
		out.Reason = *u.Reason
	}
	if u.PaymentMode != nil {
		out.PaymentMode = *u.PaymentMode
	}
	if u.Amount != nil {
		out.Amount = *u.Amount
	}
	if out.Type == TypeIncome {
		out.Necessity = NecessityNone
	}
	return out
}

// IsEmpty reports whether the update changes nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Date == nil && u.Type == nil && u.Necessity == nil &&
		u.Reason == nil && u.PaymentMode == nil && u.Amount == nil
}
