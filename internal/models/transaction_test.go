package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransferRecord(t *testing.T) {
	tx, err := NewTransferRecord(1, 2, d("5"), "USDT", "rent")
	require.NoError(t, err)
	assert.Equal(t, TransactionTransfer, tx.Type)
	assert.Equal(t, TransactionCompleted, tx.Status)
	assert.True(t, tx.FeeAmount.IsZero())
	require.NotNil(t, tx.RelatedUserID)
	assert.Equal(t, int64(2), *tx.RelatedUserID)

	_, err = NewTransferRecord(1, 1, d("5"), "USDT", "")
	assert.Error(t, err)

	_, err = NewTransferRecord(1, 2, d("0"), "USDT", "")
	assert.Error(t, err)
}

func TestNewWithdrawalRecord(t *testing.T) {
	tx, err := NewWithdrawalRecord(1, d("100"), d("0.5"), "USDT", "abc", "")
	require.NoError(t, err)
	assert.Equal(t, TransactionWithdrawal, tx.Type)
	assert.Equal(t, "abc", tx.RefTxID)
	assert.True(t, tx.FeeAmount.Equal(d("0.5")))

	_, err = NewWithdrawalRecord(1, d("100"), d("0.5"), "USDT", "", "")
	assert.Error(t, err, "settled withdrawal needs a hash")

	_, err = NewWithdrawalRecord(1, d("100"), decimal.NewFromInt(-1), "USDT", "abc", "")
	assert.Error(t, err)
}

func TestNewDepositAndPayoutRecords(t *testing.T) {
	dep, err := NewDepositRecord(3, d("10"), "USDT", "chain-ref", "")
	require.NoError(t, err)
	assert.Equal(t, TransactionDeposit, dep.Type)
	assert.Equal(t, TransactionCompleted, dep.Status)

	pay, err := NewPayoutRecord(9, d("10"), "TRX", "ops")
	require.NoError(t, err)
	assert.Equal(t, TransactionPayment, pay.Type)
	assert.Equal(t, TransactionPending, pay.Status)

	_, err = NewDepositRecord(0, d("10"), "USDT", "", "")
	assert.Error(t, err)

	_, err = NewDepositRecord(3, d("10"), "", "", "")
	assert.Error(t, err)
}

func TestTransactionStatus_CanTransition(t *testing.T) {
	assert.True(t, TransactionPending.CanTransition(TransactionCompleted))
	assert.True(t, TransactionPending.CanTransition(TransactionFailed))
	assert.True(t, TransactionPending.CanTransition(TransactionCancelled))
	assert.False(t, TransactionPending.CanTransition(TransactionPending))
	assert.False(t, TransactionCompleted.CanTransition(TransactionFailed))
	assert.False(t, TransactionFailed.CanTransition(TransactionCompleted))
}
