package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/blockchain"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SystemStatus struct {
	HotWalletAddress   string                     `json:"hot_wallet_address"`
	HotWalletBalances  map[string]decimal.Decimal `json:"hot_wallet_balances"`
	PendingWithdrawals int                        `json:"pending_withdrawals"`
}

type PayoutInput struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Asset  string          `json:"asset,omitempty"`
	Memo   string          `json:"memo,omitempty"`
}

// AdminService covers hot wallet operations that do not touch user ledgers.
type AdminService interface {
	SystemStatus(ctx context.Context) (*SystemStatus, error)
	TxStatus(ctx context.Context, txHash string) (*blockchain.TxStatus, error)
	IsValidAddress(address string) bool
	Send(ctx context.Context, adminID int64, in PayoutInput) (*models.Transaction, error)
}

type adminService struct {
	chain       blockchain.Client
	withdrawals repository.WithdrawalRepository
	journal     repository.TransactionRepository
	hotWallet   string
	assets      Assets
}

func NewAdminService(chain blockchain.Client, withdrawals repository.WithdrawalRepository, journal repository.TransactionRepository, hotWallet string, assets Assets) AdminService {
	return &adminService{
		chain:       chain,
		withdrawals: withdrawals,
		journal:     journal,
		hotWallet:   hotWallet,
		assets:      assets,
	}
}

func (s *adminService) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	status := &SystemStatus{HotWalletAddress: s.hotWallet}

	if s.hotWallet != "" {
		balances, err := s.chain.GetBalance(ctx, s.hotWallet)
		if err != nil {
			return nil, fmt.Errorf("hot wallet balance: %w", err)
		}
		status.HotWalletBalances = balances
	}

	pending, err := s.withdrawals.ListByStatus(ctx, models.WithdrawalPending, 0, 0)
	if err != nil {
		return nil, err
	}
	status.PendingWithdrawals = len(pending)
	return status, nil
}

func (s *adminService) TxStatus(ctx context.Context, txHash string) (*blockchain.TxStatus, error) {
	if !validTxHash(txHash) {
		return nil, apperrors.ErrInvalidTxHash
	}
	return s.chain.CheckStatus(ctx, txHash)
}

func (s *adminService) IsValidAddress(address string) bool {
	return s.chain.IsValidAddress(address)
}

func (s *adminService) Send(ctx context.Context, adminID int64, in PayoutInput) (*models.Transaction, error) {
	if !models.ValidAmount(in.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}
	if !s.chain.IsValidAddress(in.To) {
		return nil, apperrors.ErrInvalidAddress
	}
	asset, err := s.assets.Resolve(in.Asset)
	if err != nil {
		return nil, err
	}

	balances, err := s.chain.GetBalance(ctx, s.hotWallet)
	if err != nil {
		return nil, fmt.Errorf("hot wallet balance: %w", err)
	}
	if balances[asset].LessThan(in.Amount) {
		return nil, fmt.Errorf("%w: hot wallet holds %s %s", apperrors.ErrInsufficientFunds, balances[asset], asset)
	}

	record, err := models.NewPayoutRecord(adminID, in.Amount, asset, in.Memo)
	if err != nil {
		return nil, err
	}
	if err := s.journal.Create(ctx, record); err != nil {
		return nil, err
	}

	recordCtx := context.WithoutCancel(ctx)
	txHash, sendErr := s.chain.SendAsset(ctx, blockchain.SendRequest{
		RequestID: blockchain.RequestID("payout", record.ID),
		To:        in.To,
		Amount:    in.Amount,
		Asset:     asset,
		Memo:      in.Memo,
	})

	switch {
	case sendErr == nil:
		if err := s.journal.UpdateStatus(recordCtx, record.ID, models.TransactionPending, models.TransactionCompleted, txHash); err != nil {
			logger.Log.Error("failed to complete payout record", zap.Int64("transaction", record.ID), zap.String("tx_hash", txHash), zap.Error(err))
			return record, fmt.Errorf("%w: sent as %s but not recorded: %v", apperrors.ErrSettlementUncertain, txHash, err)
		}
		record.Status = models.TransactionCompleted
		record.RefTxID = txHash
		logger.Log.Info("payout sent", zap.Int64("admin", adminID), zap.String("tx_hash", txHash))
		return record, nil

	case errors.Is(sendErr, blockchain.ErrSendRejected):
		if err := s.journal.UpdateStatus(recordCtx, record.ID, models.TransactionPending, models.TransactionFailed, ""); err != nil {
			logger.Log.Error("failed to fail payout record", zap.Int64("transaction", record.ID), zap.Error(err))
		} else {
			record.Status = models.TransactionFailed
		}
		return record, fmt.Errorf("%w: %v", apperrors.ErrSettlementFailed, sendErr)

	default:
		logger.Log.Error("payout outcome unknown", zap.Int64("transaction", record.ID), zap.Error(sendErr))
		return record, fmt.Errorf("%w: %v", apperrors.ErrSettlementUncertain, sendErr)
	}
}
