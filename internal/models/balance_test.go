package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBalance_Apply(t *testing.T) {
	base := Balance{UserID: 1, Asset: "USDT", Amount: d("100"), Frozen: d("30")}

	tests := []struct {
		name        string
		amountDelta string
		frozenDelta string
		wantOK      bool
		wantAmount  string
		wantFrozen  string
	}{
		{"credit", "50", "0", true, "150", "30"},
		{"debit within available", "-70", "0", true, "30", "30"},
		{"debit into frozen funds", "-70.00000001", "0", false, "", ""},
		{"freeze available", "0", "70", true, "100", "100"},
		{"freeze beyond available", "0", "70.00000001", false, "", ""},
		{"unfreeze", "0", "-30", true, "100", "0"},
		{"unfreeze beyond frozen", "0", "-30.00000001", false, "", ""},
		{"consume frozen", "-30", "-30", true, "70", "0"},
		{"consume more than frozen", "-31", "-31", false, "", ""},
		{"consume frozen and part of available", "-50", "-30", true, "50", "0"},
		{"consume frozen and too much available", "-101", "-30", false, "", ""},
		{"no-op", "0", "0", true, "100", "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := base.Apply(d(tt.amountDelta), d(tt.frozenDelta))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, base, got, "rejected mutation must not change the entry")
				return
			}
			assert.True(t, got.Amount.Equal(d(tt.wantAmount)), "amount %s", got.Amount)
			assert.True(t, got.Frozen.Equal(d(tt.wantFrozen)), "frozen %s", got.Frozen)
			assert.False(t, got.Frozen.IsNegative())
			assert.False(t, got.Frozen.GreaterThan(got.Amount))
		})
	}
}

func TestBalance_Available(t *testing.T) {
	b := Balance{Amount: d("10.5"), Frozen: d("0.25")}
	assert.True(t, b.Available().Equal(d("10.25")))

	v := b.View()
	assert.True(t, v.Available.Equal(d("10.25")))
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"1", true},
		{"0.00000001", true},
		{"0.000000001", false},
		{"0", false},
		{"-5", false},
		{"12345.12345678", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(d(tt.amount)))
		})
	}
}
