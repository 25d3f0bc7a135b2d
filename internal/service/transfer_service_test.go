package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferService_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		req         func(sender, recipient, inactive int64) TransferRequest
		expectedErr error
		wantSender  string
		wantRecip   string
	}{
		{
			name: "успешный перевод по id",
			req: func(s, r, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: r, Amount: dec("40"), Memo: "lunch"}
			},
			wantSender: "60",
			wantRecip:  "40",
		},
		{
			name: "успешный перевод по логину",
			req: func(s, _, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientLogin: "bob", Amount: dec("100"), Asset: "usdt"}
			},
			wantSender: "0",
			wantRecip:  "100",
		},
		{
			name: "недостаточно средств",
			req: func(s, r, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: r, Amount: dec("100.00000001")}
			},
			expectedErr: apperrors.ErrInsufficientFunds,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "перевод самому себе",
			req: func(s, _, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: s, Amount: dec("1")}
			},
			expectedErr: apperrors.ErrSelfTransfer,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "перевод самому себе по логину",
			req: func(s, _, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientLogin: "alice", Amount: dec("1")}
			},
			expectedErr: apperrors.ErrSelfTransfer,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "получатель заблокирован",
			req: func(s, _, inactive int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: inactive, Amount: dec("1")}
			},
			expectedErr: apperrors.ErrRecipientInactive,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "отправитель заблокирован",
			req: func(_, r, inactive int64) TransferRequest {
				return TransferRequest{SenderID: inactive, RecipientID: r, Amount: dec("1")}
			},
			expectedErr: apperrors.ErrUserInactive,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "получатель не найден",
			req: func(s, _, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: 404, Amount: dec("1")}
			},
			expectedErr: apperrors.ErrUserNotFound,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "нулевая сумма",
			req: func(s, r, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: r, Amount: dec("0")}
			},
			expectedErr: apperrors.ErrInvalidAmount,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "слишком точная сумма",
			req: func(s, r, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: r, Amount: dec("0.000000001")}
			},
			expectedErr: apperrors.ErrInvalidAmount,
			wantSender:  "100",
			wantRecip:   "0",
		},
		{
			name: "неподдерживаемый актив",
			req: func(s, r, _ int64) TransferRequest {
				return TransferRequest{SenderID: s, RecipientID: r, Amount: dec("1"), Asset: "BTC"}
			},
			expectedErr: apperrors.ErrInvalidAsset,
			wantSender:  "100",
			wantRecip:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			alice := f.user(t, "alice", true)
			bob := f.user(t, "bob", true)
			carol := f.user(t, "carol", false)
			f.fund(t, alice, "100")

			record, err := f.transfers.Transfer(context.Background(), tt.req(alice, bob, carol))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, record)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.TransactionTransfer, record.Type)
				assert.Equal(t, models.TransactionCompleted, record.Status)
				assert.Equal(t, alice, record.UserID)
				require.NotNil(t, record.RelatedUserID)
				assert.Equal(t, bob, *record.RelatedUserID)
			}

			assertBalance(t, f.balance(t, alice), tt.wantSender, "0")
			assertBalance(t, f.balance(t, bob), tt.wantRecip, "0")

			aliceHistory, err := f.journal.List(context.Background(), models.TransactionFilter{UserID: alice})
			require.NoError(t, err)
			bobHistory, err := f.journal.List(context.Background(), models.TransactionFilter{UserID: bob})
			require.NoError(t, err)
			assert.Empty(t, bobHistory)
			if tt.expectedErr != nil {
				require.Len(t, aliceHistory, 1, "only the seed deposit is journaled")
				assert.Equal(t, models.TransactionDeposit, aliceHistory[0].Type)
			} else {
				require.Len(t, aliceHistory, 2)
				assert.Equal(t, models.TransactionTransfer, aliceHistory[0].Type)
			}
		})
	}
}

func TestTransferService_FrozenFundsAreNotSpendable(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", true)
	bob := f.user(t, "bob", true)
	f.fund(t, alice, "100")

	_, err := f.ledger.Freeze(ctx, alice, "USDT", dec("70"))
	require.NoError(t, err)

	_, err = f.transfers.Transfer(ctx, TransferRequest{SenderID: alice, RecipientID: bob, Amount: dec("31")})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	_, err = f.transfers.Transfer(ctx, TransferRequest{SenderID: alice, RecipientID: bob, Amount: dec("30")})
	require.NoError(t, err)
	assertBalance(t, f.balance(t, alice), "70", "70")
}

type failingJournal struct {
	repository.TransactionRepository
}

func (failingJournal) Create(context.Context, *models.Transaction) error {
	return errors.New("journal unavailable")
}

func TestTransferService_RollsBackOnJournalFailure(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.user(t, "alice", true)
	bob := f.user(t, "bob", true)
	f.fund(t, alice, "100")

	s := f.store
	transfers := NewTransferService(s.Transactor(), s.Users(), s.Balances(), failingJournal{s.Transactions()}, f.ledger, testAssets)

	_, err := transfers.Transfer(context.Background(), TransferRequest{SenderID: alice, RecipientID: bob, Amount: dec("25")})
	require.Error(t, err)

	assertBalance(t, f.balance(t, alice), "100", "0")
	assertBalance(t, f.balance(t, bob), "0", "0")

	list, err := f.journal.List(context.Background(), models.TransactionFilter{UserID: alice, Type: models.TransactionTransfer})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransferService_ConcurrentTransfersConserveFunds(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", true)
	bob := f.user(t, "bob", true)
	f.fund(t, alice, "50")
	f.fund(t, bob, "50")

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from, to := alice, bob
			if i%2 == 1 {
				from, to = bob, alice
			}
			_, err := f.transfers.Transfer(ctx, TransferRequest{SenderID: from, RecipientID: to, Amount: dec("7")})
			if err != nil && !errors.Is(err, apperrors.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	a := f.balance(t, alice)
	b := f.balance(t, bob)
	assert.True(t, a.Amount.Add(b.Amount).Equal(dec("100")), "total changed: %s + %s", a.Amount, b.Amount)
	assert.False(t, a.Amount.IsNegative())
	assert.False(t, b.Amount.IsNegative())
}
