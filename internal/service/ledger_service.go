package service

import (
	"context"
	"fmt"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LedgerService interface {
	GetBalance(ctx context.Context, userID int64, asset string) (models.Balance, error)
	ListBalances(ctx context.Context, userID int64) ([]models.Balance, error)
	Overview(ctx context.Context, offset, limit uint64) ([]models.Balance, error)
	// ApplyDelta adjusts total and frozen amounts of one entry atomically.
	// It joins the caller's transaction when ctx carries one.
	ApplyDelta(ctx context.Context, userID int64, asset string, amountDelta, frozenDelta decimal.Decimal) (models.Balance, error)
	Freeze(ctx context.Context, userID int64, asset string, amount decimal.Decimal) (models.Balance, error)
	Unfreeze(ctx context.Context, userID int64, asset string, amount decimal.Decimal) (models.Balance, error)
	Deposit(ctx context.Context, userID int64, asset string, amount decimal.Decimal, refTxID, memo string) (*models.Transaction, error)
}

type ledgerService struct {
	tx       repository.Transactor
	balances repository.BalanceRepository
	journal  repository.TransactionRepository
	users    repository.UserRepository
	assets   Assets
}

func NewLedgerService(tx repository.Transactor, balances repository.BalanceRepository, journal repository.TransactionRepository, users repository.UserRepository, assets Assets) LedgerService {
	return &ledgerService{
		tx:       tx,
		balances: balances,
		journal:  journal,
		users:    users,
		assets:   assets,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, userID int64, asset string) (models.Balance, error) {
	asset, err := s.assets.Resolve(asset)
	if err != nil {
		return models.Balance{}, err
	}
	return s.balances.GetBalance(ctx, userID, asset)
}

func (s *ledgerService) ListBalances(ctx context.Context, userID int64) ([]models.Balance, error) {
	return s.balances.ListBalances(ctx, userID)
}

func (s *ledgerService) Overview(ctx context.Context, offset, limit uint64) ([]models.Balance, error) {
	return s.balances.ListAll(ctx, offset, limit)
}

func (s *ledgerService) ApplyDelta(ctx context.Context, userID int64, asset string, amountDelta, frozenDelta decimal.Decimal) (models.Balance, error) {
	var result models.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.balances.LockBalance(ctx, userID, asset)
		if err != nil {
			return err
		}

		next, ok := current.Apply(amountDelta, frozenDelta)
		if !ok {
			return fmt.Errorf("%w: user %d %s available %s, amount delta %s, frozen delta %s",
				apperrors.ErrInsufficientFunds, userID, asset, current.Available(), amountDelta, frozenDelta)
		}

		result, err = s.balances.SaveBalance(ctx, next)
		return err
	})
	if err != nil {
		return models.Balance{}, err
	}
	return result, nil
}

func (s *ledgerService) Freeze(ctx context.Context, userID int64, asset string, amount decimal.Decimal) (models.Balance, error) {
	if !models.ValidAmount(amount) {
		return models.Balance{}, apperrors.ErrInvalidAmount
	}
	return s.ApplyDelta(ctx, userID, asset, decimal.Zero, amount)
}

func (s *ledgerService) Unfreeze(ctx context.Context, userID int64, asset string, amount decimal.Decimal) (models.Balance, error) {
	if !models.ValidAmount(amount) {
		return models.Balance{}, apperrors.ErrInvalidAmount
	}
	return s.ApplyDelta(ctx, userID, asset, decimal.Zero, amount.Neg())
}

func (s *ledgerService) Deposit(ctx context.Context, userID int64, asset string, amount decimal.Decimal, refTxID, memo string) (*models.Transaction, error) {
	if !models.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}
	asset, err := s.assets.Resolve(asset)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	record, err := models.NewDepositRecord(userID, amount, asset, refTxID, memo)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ApplyDelta(ctx, userID, asset, amount, decimal.Zero); err != nil {
			return err
		}
		return s.journal.Create(ctx, record)
	})
	if err != nil {
		logger.Log.Error("deposit failed", zap.Int64("user", userID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("deposit credited", zap.Int64("user", userID), zap.String("amount", amount.String()), zap.String("asset", asset))
	return record, nil
}
