package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Amount(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		amount   float64
		want     string
	}{
		{name: "default currency", settings: Settings{}, amount: 1234.5, want: "$1,234.50"},
		{name: "zero", settings: Settings{Currency: "usd"}, amount: 0, want: "$0.00"},
		{name: "rounds to cents", settings: Settings{}, amount: 10.005, want: "$10.01"},
		{name: "custom symbol", settings: Settings{Currency: "PKR", Symbol: "Rs."}, amount: 250, want: "Rs.250.00"},
		{name: "hidden amounts", settings: Settings{Symbol: "Rs.", HideAmounts: true}, amount: 250, want: "Rs.•••••"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.settings).Amount(tt.amount))
		})
	}
}

func TestFormatter_PlainIgnoresPrivacy(t *testing.T) {
	f := New(Settings{HideAmounts: true})
	assert.Equal(t, "$5.00", f.Plain(5))
}

func TestFormatter_Label(t *testing.T) {
	assert.Equal(t, "Coffee", New(Settings{}).Label("Coffee"))
	assert.Equal(t, "••••", New(Settings{HideReasons: true}).Label("Coffee"))
}

func TestFormatter_MinorUnits(t *testing.T) {
	f := New(Settings{})
	assert.Equal(t, int64(1999), f.MinorUnits(19.99))
	assert.Equal(t, int64(30), f.MinorUnits(0.1+0.2))

	jpy := New(Settings{Currency: "JPY"})
	assert.Equal(t, int64(500), jpy.MinorUnits(500))
}

func TestFormatter_UnknownCurrencyFallsBack(t *testing.T) {
	f := New(Settings{Currency: "zzz"})
	assert.Equal(t, "ZZZ ", f.Symbol())
	assert.Equal(t, "ZZZ 1.50", f.Amount(1.5))
}
