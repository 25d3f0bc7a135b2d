package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalCancelled WithdrawalStatus = "cancelled"
	WithdrawalFailed    WithdrawalStatus = "failed"
)

// SettlementStatus tracks the chain relay of an approved withdrawal.
type SettlementStatus string

const (
	SettlementNone       SettlementStatus = "none"
	SettlementProcessing SettlementStatus = "processing"
	SettlementSettled    SettlementStatus = "settled"
	SettlementFailed     SettlementStatus = "failed"
	SettlementUnknown    SettlementStatus = "unknown"
	SettlementReleased   SettlementStatus = "released"
)

// NeedsResolution reports whether an operator has to settle or release the frozen funds.
func (s SettlementStatus) NeedsResolution() bool {
	return s == SettlementFailed || s == SettlementUnknown
}

type WithdrawalRequest struct {
	ID                 int64            `json:"id" db:"id"`
	UserID             int64            `json:"user_id" db:"user_id"`
	Amount             decimal.Decimal  `json:"amount" db:"amount"`
	FeeAmount          decimal.Decimal  `json:"fee_amount" db:"fee_amount"`
	Asset              string           `json:"asset" db:"asset"`
	DestinationAddress string           `json:"destination_address" db:"destination_address"`
	Status             WithdrawalStatus `json:"status" db:"status"`
	SettlementStatus   SettlementStatus `json:"settlement_status" db:"settlement_status"`
	AdminUserID        *int64           `json:"admin_user_id,omitempty" db:"admin_user_id"`
	ProcessedAt        *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
	TransactionID      *int64           `json:"transaction_id,omitempty" db:"transaction_id"`
	SettlementTxHash   string           `json:"settlement_tx_hash,omitempty" db:"settlement_tx_hash"`
	Memo               string           `json:"memo,omitempty" db:"memo"`
	AdminMemo          string           `json:"admin_memo,omitempty" db:"admin_memo"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
}

// Total is the amount frozen for the request: the payout plus the fee.
func (w WithdrawalRequest) Total() decimal.Decimal {
	return w.Amount.Add(w.FeeAmount)
}

// Decision is the admin outcome applied to a pending request.
type Decision struct {
	Status      WithdrawalStatus
	Settlement  SettlementStatus
	AdminUserID int64
	AdminMemo   string
	ProcessedAt time.Time
}

// SettlementUpdate records the outcome of a chain relay. An empty Status
// leaves the request status unchanged.
type SettlementUpdate struct {
	Status        WithdrawalStatus
	Settlement    SettlementStatus
	TransactionID *int64
	TxHash        string
}
