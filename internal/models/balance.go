package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const AmountScale = 8

type Balance struct {
	ID        int64           `json:"-" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Asset     string          `json:"asset" db:"asset"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Frozen    decimal.Decimal `json:"frozen_amount" db:"frozen_amount"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// BalanceView is the wire representation with the derived available amount.
type BalanceView struct {
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
	Frozen    decimal.Decimal `json:"frozen_amount"`
	Available decimal.Decimal `json:"available_amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewBalance(userID int64, asset string) Balance {
	return Balance{
		UserID: userID,
		Asset:  asset,
		Amount: decimal.Zero,
		Frozen: decimal.Zero,
	}
}

func (b Balance) Available() decimal.Decimal {
	return b.Amount.Sub(b.Frozen)
}

func (b Balance) View() BalanceView {
	return BalanceView{
		Asset:     b.Asset,
		Amount:    b.Amount,
		Frozen:    b.Frozen,
		Available: b.Available(),
		UpdatedAt: b.UpdatedAt,
	}
}

// Apply returns the entry with both deltas applied, or false when the result
// would break amount >= frozen >= 0 or when a debit draws on funds that are
// frozen and not released by the same mutation.
func (b Balance) Apply(amountDelta, frozenDelta decimal.Decimal) (Balance, bool) {
	newAmount := b.Amount.Add(amountDelta)
	newFrozen := b.Frozen.Add(frozenDelta)

	if newAmount.IsNegative() || newFrozen.IsNegative() || newFrozen.GreaterThan(newAmount) {
		return b, false
	}

	if amountDelta.IsNegative() {
		released := decimal.Zero
		if frozenDelta.IsNegative() {
			released = frozenDelta.Neg()
		}
		fromAvailable := amountDelta.Neg().Sub(released)
		if fromAvailable.GreaterThan(b.Available()) {
			return b, false
		}
	}

	b.Amount = newAmount
	b.Frozen = newFrozen
	return b, true
}

// ValidAmount reports whether v is strictly positive and fits the ledger scale.
func ValidAmount(v decimal.Decimal) bool {
	return v.IsPositive() && v.Equal(v.Truncate(AmountScale))
}
