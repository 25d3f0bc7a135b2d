package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/blockchain"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/metrics"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WithdrawalPolicy struct {
	Min         decimal.Decimal
	Max         decimal.Decimal
	FeeRate     decimal.Decimal
	SendTimeout time.Duration
}

// Fee is rounded to the ledger scale.
func (p WithdrawalPolicy) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.FeeRate).Round(models.AmountScale)
}

type WithdrawalInput struct {
	Amount             decimal.Decimal `json:"amount"`
	Asset              string          `json:"asset,omitempty"`
	DestinationAddress string          `json:"destination_address"`
	Memo               string          `json:"memo,omitempty"`
}

type WithdrawalService interface {
	Request(ctx context.Context, userID int64, in WithdrawalInput) (*models.WithdrawalRequest, error)
	// Decide approves or rejects a pending request. On approval the asset is
	// relayed to the network after the decision is committed; an error
	// wrapping ErrSettlementUncertain or ErrSettlementFailed comes back with
	// the updated request when the relay did not settle.
	Decide(ctx context.Context, requestID, adminID int64, approved bool, adminMemo string) (*models.WithdrawalRequest, error)
	// ResolveSettlement finishes a failed or unknown relay. A non-empty txHash
	// must be confirmed on chain and settles the request, an empty one
	// releases the frozen funds back to the user.
	ResolveSettlement(ctx context.Context, requestID, adminID int64, txHash string) (*models.WithdrawalRequest, error)
	Get(ctx context.Context, requestID int64) (*models.WithdrawalRequest, error)
	ListPending(ctx context.Context, offset, limit uint64) ([]models.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID int64, offset, limit uint64) ([]models.WithdrawalRequest, error)
}

type withdrawalService struct {
	tx          repository.Transactor
	users       repository.UserRepository
	withdrawals repository.WithdrawalRepository
	journal     repository.TransactionRepository
	ledger      LedgerService
	chain       blockchain.Client
	policy      WithdrawalPolicy
	assets      Assets
	now         func() time.Time
}

func NewWithdrawalService(tx repository.Transactor, users repository.UserRepository, withdrawals repository.WithdrawalRepository, journal repository.TransactionRepository, ledger LedgerService, chain blockchain.Client, policy WithdrawalPolicy, assets Assets) WithdrawalService {
	return &withdrawalService{
		tx:          tx,
		users:       users,
		withdrawals: withdrawals,
		journal:     journal,
		ledger:      ledger,
		chain:       chain,
		policy:      policy,
		assets:      assets,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *withdrawalService) Request(ctx context.Context, userID int64, in WithdrawalInput) (*models.WithdrawalRequest, error) {
	req, err := s.request(ctx, userID, in)
	metrics.WithdrawalsTotal.WithLabelValues("request", outcome(err)).Inc()
	return req, err
}

func (s *withdrawalService) request(ctx context.Context, userID int64, in WithdrawalInput) (*models.WithdrawalRequest, error) {
	if err := requireActive(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if !models.ValidAmount(in.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}
	if in.Amount.LessThan(s.policy.Min) || in.Amount.GreaterThan(s.policy.Max) {
		return nil, fmt.Errorf("%w: %s not in [%s, %s]", apperrors.ErrWithdrawalLimits, in.Amount, s.policy.Min, s.policy.Max)
	}
	if !s.chain.IsValidAddress(in.DestinationAddress) {
		return nil, apperrors.ErrInvalidAddress
	}
	asset, err := s.assets.Resolve(in.Asset)
	if err != nil {
		return nil, err
	}

	req := &models.WithdrawalRequest{
		UserID:             userID,
		Amount:             in.Amount,
		FeeAmount:          s.policy.Fee(in.Amount),
		Asset:              asset,
		DestinationAddress: in.DestinationAddress,
		Status:             models.WithdrawalPending,
		SettlementStatus:   models.SettlementNone,
		Memo:               in.Memo,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Freeze(ctx, userID, asset, req.Total()); err != nil {
			return err
		}
		return s.withdrawals.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal requested",
		zap.Int64("request", req.ID),
		zap.Int64("user", userID),
		zap.String("amount", req.Amount.String()),
		zap.String("fee", req.FeeAmount.String()),
	)
	return req, nil
}

func (s *withdrawalService) Decide(ctx context.Context, requestID, adminID int64, approved bool, adminMemo string) (*models.WithdrawalRequest, error) {
	var (
		req *models.WithdrawalRequest
		err error
	)
	if approved {
		req, err = s.approve(ctx, requestID, adminID, adminMemo)
	} else {
		req, err = s.reject(ctx, requestID, adminID, adminMemo)
	}
	metrics.WithdrawalsTotal.WithLabelValues("decide", outcome(err)).Inc()
	return req, err
}

func (s *withdrawalService) reject(ctx context.Context, requestID, adminID int64, adminMemo string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		err := s.withdrawals.Decide(ctx, requestID, models.Decision{
			Status:      models.WithdrawalCancelled,
			Settlement:  models.SettlementNone,
			AdminUserID: adminID,
			AdminMemo:   adminMemo,
			ProcessedAt: s.now(),
		})
		if err != nil {
			return err
		}

		req, err = s.withdrawals.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		_, err = s.ledger.Unfreeze(ctx, req.UserID, req.Asset, req.Total())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal rejected", zap.Int64("request", requestID), zap.Int64("admin", adminID))
	return req, nil
}

func (s *withdrawalService) approve(ctx context.Context, requestID, adminID int64, adminMemo string) (*models.WithdrawalRequest, error) {
	err := s.withdrawals.Decide(ctx, requestID, models.Decision{
		Status:      models.WithdrawalCompleted,
		Settlement:  models.SettlementProcessing,
		AdminUserID: adminID,
		AdminMemo:   adminMemo,
		ProcessedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	req, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal approved", zap.Int64("request", requestID), zap.Int64("admin", adminID))

	// The decision is committed; whatever happens to the caller from here on,
	// the relay outcome must still be recorded.
	recordCtx := context.WithoutCancel(ctx)

	sendCtx, cancel := context.WithTimeout(ctx, s.policy.SendTimeout)
	txHash, sendErr := s.chain.SendAsset(sendCtx, blockchain.SendRequest{
		RequestID: blockchain.RequestID("withdrawal", req.ID),
		To:        req.DestinationAddress,
		Amount:    req.Amount,
		Asset:     req.Asset,
		Memo:      req.Memo,
	})
	cancel()

	switch {
	case sendErr == nil:
		return s.settle(recordCtx, req, models.SettlementProcessing, txHash)

	case errors.Is(sendErr, blockchain.ErrSendRejected):
		logger.Log.Warn("withdrawal rejected by network", zap.Int64("request", req.ID), zap.Error(sendErr))
		err := s.withdrawals.UpdateSettlement(recordCtx, req.ID, models.SettlementProcessing, models.SettlementUpdate{
			Status:     models.WithdrawalFailed,
			Settlement: models.SettlementFailed,
		})
		if err != nil {
			logger.Log.Error("failed to record rejected settlement", zap.Int64("request", req.ID), zap.Error(err))
			return req, fmt.Errorf("%w: %v", apperrors.ErrSettlementUncertain, err)
		}
		req.Status = models.WithdrawalFailed
		req.SettlementStatus = models.SettlementFailed
		return req, fmt.Errorf("%w: %v", apperrors.ErrSettlementFailed, sendErr)

	default:
		logger.Log.Error("withdrawal relay outcome unknown", zap.Int64("request", req.ID), zap.Error(sendErr))
		err := s.withdrawals.UpdateSettlement(recordCtx, req.ID, models.SettlementProcessing, models.SettlementUpdate{
			Settlement: models.SettlementUnknown,
		})
		if err != nil {
			logger.Log.Error("failed to record unknown settlement", zap.Int64("request", req.ID), zap.Error(err))
		} else {
			req.SettlementStatus = models.SettlementUnknown
		}
		return req, fmt.Errorf("%w: %v", apperrors.ErrSettlementUncertain, sendErr)
	}
}

// settle consumes the frozen total and journals the withdrawal in one transaction.
func (s *withdrawalService) settle(ctx context.Context, req *models.WithdrawalRequest, from models.SettlementStatus, txHash string) (*models.WithdrawalRequest, error) {
	record, err := models.NewWithdrawalRecord(req.UserID, req.Amount, req.FeeAmount, req.Asset, txHash, req.Memo)
	if err != nil {
		return req, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		total := req.Total()
		if _, err := s.ledger.ApplyDelta(ctx, req.UserID, req.Asset, total.Neg(), total.Neg()); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, record); err != nil {
			return err
		}
		return s.withdrawals.UpdateSettlement(ctx, req.ID, from, models.SettlementUpdate{
			Status:        models.WithdrawalCompleted,
			Settlement:    models.SettlementSettled,
			TransactionID: &record.ID,
			TxHash:        txHash,
		})
	})
	if err != nil {
		logger.Log.Error("failed to record settlement",
			zap.Int64("request", req.ID),
			zap.String("tx_hash", txHash),
			zap.Error(err),
		)
		return req, fmt.Errorf("%w: sent as %s but not recorded: %w", apperrors.ErrSettlementUncertain, txHash, err)
	}

	req.Status = models.WithdrawalCompleted
	req.SettlementStatus = models.SettlementSettled
	req.TransactionID = &record.ID
	req.SettlementTxHash = txHash

	logger.Log.Info("withdrawal settled", zap.Int64("request", req.ID), zap.String("tx_hash", txHash))
	return req, nil
}

func (s *withdrawalService) ResolveSettlement(ctx context.Context, requestID, adminID int64, txHash string) (*models.WithdrawalRequest, error) {
	req, err := s.resolve(ctx, requestID, adminID, txHash)
	metrics.WithdrawalsTotal.WithLabelValues("resolve", outcome(err)).Inc()
	return req, err
}

func (s *withdrawalService) resolve(ctx context.Context, requestID, adminID int64, txHash string) (*models.WithdrawalRequest, error) {
	req, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.SettlementStatus.NeedsResolution() {
		return nil, apperrors.ErrNothingToResolve
	}
	from := req.SettlementStatus

	if txHash != "" {
		if !validTxHash(txHash) {
			return nil, apperrors.ErrInvalidTxHash
		}
		used, err := s.journal.List(ctx, models.TransactionFilter{RefTxID: txHash, Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(used) > 0 {
			return nil, apperrors.ErrTxHashAlreadyUsed
		}
		status, err := s.chain.CheckStatus(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if !status.Found || !status.Success {
			return nil, apperrors.ErrTxNotConfirmed
		}
		logger.Log.Info("resolving withdrawal as settled", zap.Int64("request", requestID), zap.Int64("admin", adminID))
		settled, err := s.settle(ctx, req, from, txHash)
		if errors.Is(err, apperrors.ErrTxHashAlreadyUsed) {
			return nil, apperrors.ErrTxHashAlreadyUsed
		}
		return settled, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		err := s.withdrawals.UpdateSettlement(ctx, req.ID, from, models.SettlementUpdate{
			Status:     models.WithdrawalFailed,
			Settlement: models.SettlementReleased,
		})
		if err != nil {
			return err
		}
		_, err = s.ledger.Unfreeze(ctx, req.UserID, req.Asset, req.Total())
		return err
	})
	if err != nil {
		return nil, err
	}

	req.Status = models.WithdrawalFailed
	req.SettlementStatus = models.SettlementReleased
	logger.Log.Info("withdrawal funds released", zap.Int64("request", requestID), zap.Int64("admin", adminID))
	return req, nil
}

func (s *withdrawalService) Get(ctx context.Context, requestID int64) (*models.WithdrawalRequest, error) {
	return s.withdrawals.GetByID(ctx, requestID)
}

func (s *withdrawalService) ListPending(ctx context.Context, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	return s.withdrawals.ListByStatus(ctx, models.WithdrawalPending, offset, limit)
}

func (s *withdrawalService) ListByUser(ctx context.Context, userID int64, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	return s.withdrawals.ListByUser(ctx, userID, offset, limit)
}
