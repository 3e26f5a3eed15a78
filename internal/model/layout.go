package model

import "strings"

// LayoutEntry is the persisted position and visibility of one dashboard card.
type LayoutEntry struct {
	ID      string `json:"id"`
	Order   int    `json:"order"`
	Visible bool   `json:"visible"`
}

// PaymentMode is a named payment channel with a short alias for quick entry.
type PaymentMode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Shorthand string `json:"shorthand"`
}

// DefaultPaymentModes are offered until the user defines their own.
var DefaultPaymentModes = []PaymentMode{
	{ID: "1", Name: "Cash", Shorthand: "C"},
	{ID: "2", Name: "Credit Card", Shorthand: "CC"},
	{ID: "3", Name: "Debit", Shorthand: "D"},
}

// ResolvePaymentMode expands a shorthand like "CC" into its full name.
// Unknown input is returned unchanged.
func ResolvePaymentMode(modes []PaymentMode, input string) string {
	for _, m := range modes {
		if strings.EqualFold(m.Shorthand, input) || strings.EqualFold(m.Name, input) {
			return m.Name
		}
	}
	return input
}
