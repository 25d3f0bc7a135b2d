package service

import (
	"context"
	"time"

	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/metrics"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"go.uber.org/zap"
)

// SettlementWatcher flags approved withdrawals whose relay outcome was never
// recorded, so an operator can resolve them. It never re-sends.
type SettlementWatcher struct {
	repo         repository.WithdrawalRepository
	staleAfter   time.Duration
	pollInterval time.Duration
	now          func() time.Time
}

func NewSettlementWatcher(repo repository.WithdrawalRepository, staleAfter, interval time.Duration) *SettlementWatcher {
	return &SettlementWatcher{
		repo:         repo,
		staleAfter:   staleAfter,
		pollInterval: interval,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (w *SettlementWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SettlementWatcher) sweep(ctx context.Context) {
	stale, err := w.repo.ListStaleSettlements(ctx, models.SettlementProcessing, w.now().Add(-w.staleAfter))
	if err != nil {
		logger.Log.Error("failed to list stale settlements", zap.Error(err))
		return
	}
	metrics.StaleSettlements.Set(float64(len(stale)))

	for _, req := range stale {
		err := w.repo.UpdateSettlement(ctx, req.ID, models.SettlementProcessing, models.SettlementUpdate{
			Settlement: models.SettlementUnknown,
		})
		if err != nil {
			logger.Log.Warn("failed to flag stale settlement", zap.Int64("request", req.ID), zap.Error(err))
			continue
		}
		logger.Log.Warn("withdrawal settlement needs review",
			zap.Int64("request", req.ID),
			zap.Int64("user", req.UserID),
			zap.String("amount", req.Amount.String()),
			zap.String("destination", req.DestinationAddress),
		)
	}
}
