package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
	TransactionPayment    TransactionType = "payment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdrawal, TransactionTransfer, TransactionPayment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionFailed || s == TransactionCancelled
}

// CanTransition reports whether a journal record may move from s to next.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	return s == TransactionPending && next.Terminal()
}

var errInvalidRecord = errors.New("invalid transaction record")

type Transaction struct {
	ID            int64             `json:"id" db:"id"`
	UserID        int64             `json:"user_id" db:"user_id"`
	Type          TransactionType   `json:"type" db:"type"`
	Amount        decimal.Decimal   `json:"amount" db:"amount"`
	Asset         string            `json:"asset" db:"asset"`
	FeeAmount     decimal.Decimal   `json:"fee_amount" db:"fee_amount"`
	Status        TransactionStatus `json:"status" db:"status"`
	RefTxID       string            `json:"ref_tx_id,omitempty" db:"ref_tx_id"`
	RelatedUserID *int64            `json:"related_user_id,omitempty" db:"related_user_id"`
	Memo          string            `json:"memo,omitempty" db:"memo"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// TransactionFilter narrows a journal listing. Zero values match everything.
type TransactionFilter struct {
	UserID  int64
	Type    TransactionType
	Asset   string
	RefTxID string
	Offset  uint64
	Limit   uint64
}

func newRecord(userID int64, typ TransactionType, amount, fee decimal.Decimal, asset string, status TransactionStatus) (*Transaction, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", errInvalidRecord)
	}
	if !ValidAmount(amount) {
		return nil, fmt.Errorf("%w: amount %s", errInvalidRecord, amount)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("%w: negative fee %s", errInvalidRecord, fee)
	}
	if asset == "" {
		return nil, fmt.Errorf("%w: asset is required", errInvalidRecord)
	}
	return &Transaction{
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Asset:     asset,
		FeeAmount: fee,
		Status:    status,
	}, nil
}

// NewTransferRecord builds the sender side record of a completed internal transfer.
func NewTransferRecord(senderID, recipientID int64, amount decimal.Decimal, asset, memo string) (*Transaction, error) {
	if recipientID <= 0 || recipientID == senderID {
		return nil, fmt.Errorf("%w: bad recipient %d", errInvalidRecord, recipientID)
	}
	tx, err := newRecord(senderID, TransactionTransfer, amount, decimal.Zero, asset, TransactionCompleted)
	if err != nil {
		return nil, err
	}
	tx.RelatedUserID = &recipientID
	tx.Memo = memo
	return tx, nil
}

// NewWithdrawalRecord builds the record of a withdrawal settled on chain.
func NewWithdrawalRecord(userID int64, amount, fee decimal.Decimal, asset, txHash, memo string) (*Transaction, error) {
	if txHash == "" {
		return nil, fmt.Errorf("%w: settled withdrawal needs a chain reference", errInvalidRecord)
	}
	tx, err := newRecord(userID, TransactionWithdrawal, amount, fee, asset, TransactionCompleted)
	if err != nil {
		return nil, err
	}
	tx.RefTxID = txHash
	tx.Memo = memo
	return tx, nil
}

func NewDepositRecord(userID int64, amount decimal.Decimal, asset, refTxID, memo string) (*Transaction, error) {
	tx, err := newRecord(userID, TransactionDeposit, amount, decimal.Zero, asset, TransactionCompleted)
	if err != nil {
		return nil, err
	}
	tx.RefTxID = refTxID
	tx.Memo = memo
	return tx, nil
}

// NewPayoutRecord builds the record of a hot wallet payment sent by an admin.
// It starts pending and is completed once the chain accepts the send.
func NewPayoutRecord(adminID int64, amount decimal.Decimal, asset, memo string) (*Transaction, error) {
	tx, err := newRecord(adminID, TransactionPayment, amount, decimal.Zero, asset, TransactionPending)
	if err != nil {
		return nil, err
	}
	tx.Memo = memo
	return tx, nil
}
