package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/metrics"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferRequest moves funds between two users. The recipient is looked up
// by RecipientID when set, otherwise by RecipientLogin.
type TransferRequest struct {
	SenderID       int64           `json:"-"`
	RecipientID    int64           `json:"recipient_id,omitempty"`
	RecipientLogin string          `json:"recipient_login,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Asset          string          `json:"asset,omitempty"`
	Memo           string          `json:"memo,omitempty"`
}

type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error)
}

type transferService struct {
	tx       repository.Transactor
	users    repository.UserRepository
	balances repository.BalanceRepository
	journal  repository.TransactionRepository
	ledger   LedgerService
	assets   Assets
}

func NewTransferService(tx repository.Transactor, users repository.UserRepository, balances repository.BalanceRepository, journal repository.TransactionRepository, ledger LedgerService, assets Assets) TransferService {
	return &transferService{
		tx:       tx,
		users:    users,
		balances: balances,
		journal:  journal,
		ledger:   ledger,
		assets:   assets,
	}
}

func (s *transferService) Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error) {
	record, err := s.transfer(ctx, req)
	metrics.TransfersTotal.WithLabelValues(outcome(err)).Inc()
	return record, err
}

func (s *transferService) transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error) {
	if req.RecipientID != 0 && req.RecipientID == req.SenderID {
		return nil, apperrors.ErrSelfTransfer
	}
	if err := requireActive(ctx, s.users, req.SenderID); err != nil {
		return nil, err
	}

	recipient, err := s.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}
	if recipient.ID == req.SenderID {
		return nil, apperrors.ErrSelfTransfer
	}
	if !recipient.IsActive {
		return nil, apperrors.ErrRecipientInactive
	}

	if !models.ValidAmount(req.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}
	asset, err := s.assets.Resolve(req.Asset)
	if err != nil {
		return nil, err
	}

	record, err := models.NewTransferRecord(req.SenderID, recipient.ID, req.Amount, asset, req.Memo)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		first, second := req.SenderID, recipient.ID
		if first > second {
			first, second = second, first
		}
		locked := make(map[int64]models.Balance, 2)
		for _, id := range []int64{first, second} {
			b, err := s.balances.LockBalance(ctx, id, asset)
			if err != nil {
				return err
			}
			locked[id] = b
		}

		if locked[req.SenderID].Available().LessThan(req.Amount) {
			return fmt.Errorf("%w: available %s, requested %s",
				apperrors.ErrInsufficientFunds, locked[req.SenderID].Available(), req.Amount)
		}

		if _, err := s.ledger.ApplyDelta(ctx, req.SenderID, asset, req.Amount.Neg(), decimal.Zero); err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDelta(ctx, recipient.ID, asset, req.Amount, decimal.Zero); err != nil {
			return err
		}
		return s.journal.Create(ctx, record)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Log.Error("transfer failed", zap.Int64("sender", req.SenderID), zap.Int64("recipient", recipient.ID), zap.Error(err))
		}
		return nil, err
	}

	logger.Log.Info("transfer completed",
		zap.Int64("sender", req.SenderID),
		zap.Int64("recipient", recipient.ID),
		zap.String("amount", req.Amount.String()),
		zap.String("asset", asset),
	)
	return record, nil
}

func (s *transferService) resolveRecipient(ctx context.Context, req TransferRequest) (*models.User, error) {
	switch {
	case req.RecipientID != 0:
		return s.users.GetUserByID(ctx, req.RecipientID)
	case req.RecipientLogin != "":
		return s.users.GetUserByLogin(ctx, req.RecipientLogin)
	default:
		return nil, apperrors.ErrUserNotFound
	}
}

// requireActive fails when the account was disabled after its token was issued.
func requireActive(ctx context.Context, users repository.UserRepository, userID int64) error {
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperrors.ErrUserInactive
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrSettlementUncertain):
		return "uncertain"
	case errors.Is(err, apperrors.ErrSettlementFailed):
		return "rejected"
	default:
		return "error"
	}
}
