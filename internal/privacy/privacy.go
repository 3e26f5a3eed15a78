// Package privacy formats amounts and labels for display, masking them when
// privacy mode asks for it. It never changes the underlying numbers.
package privacy

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is used when no currency code is configured.
	DefaultCurrency = "USD"

	amountMask = "•••••"
	labelMask  = "••••"
)

// Settings is the display configuration.
type Settings struct {
	// Currency is an ISO 4217 code such as "USD" or "PKR".
	Currency string `mapstructure:"currency"`
	// Symbol overrides the currency's own symbol, e.g. "Rs.".
	Symbol      string `mapstructure:"symbol"`
	HideAmounts bool   `mapstructure:"hide_amounts"`
	HideReasons bool   `mapstructure:"hide_reasons"`
}

// Formatter renders amounts and labels according to Settings.
type Formatter struct {
	formatter *money.Formatter
	symbol    string
	fraction  int
	settings  Settings
}

// New builds a Formatter. Unknown currency codes fall back to two decimal places.
func New(s Settings) *Formatter {
	code := strings.ToUpper(strings.TrimSpace(s.Currency))
	if code == "" {
		code = DefaultCurrency
	}
	s.Currency = code

	fraction, dec, thousand, symbol := 2, ".", ",", code+" "
	if c := money.GetCurrency(code); c != nil {
		fraction, dec, thousand, symbol = c.Fraction, c.Decimal, c.Thousand, c.Grapheme
	}
	if s.Symbol != "" {
		symbol = s.Symbol
	}

	return &Formatter{
		formatter: money.NewFormatter(fraction, dec, thousand, symbol, "$1"),
		symbol:    symbol,
		fraction:  fraction,
		settings:  s,
	}
}

// Settings returns the configuration the formatter was built with.
func (f *Formatter) Settings() Settings {
	return f.settings
}

// Symbol returns the currency symbol in use.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Amount formats amount with the currency symbol, or a mask when amounts are hidden.
func (f *Formatter) Amount(amount float64) string {
	if f.settings.HideAmounts {
		return f.symbol + amountMask
	}
	return f.Plain(amount)
}

// Plain formats amount ignoring privacy mode.
func (f *Formatter) Plain(amount float64) string {
	return f.formatter.Format(f.MinorUnits(amount))
}

// MinorUnits converts amount into the currency's smallest unit, rounding half away from zero.
func (f *Formatter) MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(int32(f.fraction)).Round(0).IntPart()
}

// Label returns label, or a mask when reasons are hidden.
func (f *Formatter) Label(label string) string {
	if f.settings.HideReasons {
		return labelMask
	}
	return label
}
