package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"go.uber.org/zap"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, req *models.WithdrawalRequest) error
	GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status models.WithdrawalStatus, offset, limit uint64) ([]models.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID int64, offset, limit uint64) ([]models.WithdrawalRequest, error)
	// Decide moves a pending request to its decided state. It fails with
	// ErrAlreadyDecided when the request is no longer pending.
	Decide(ctx context.Context, id int64, d models.Decision) error
	// UpdateSettlement applies upd only while the settlement is still in from.
	UpdateSettlement(ctx context.Context, id int64, from models.SettlementStatus, upd models.SettlementUpdate) error
	ListStaleSettlements(ctx context.Context, status models.SettlementStatus, processedBefore time.Time) ([]models.WithdrawalRequest, error)
}

var withdrawalColumns = []string{
	"id", "user_id", "amount", "fee_amount", "asset", "destination_address", "status", "settlement_status",
	"admin_user_id", "processed_at", "transaction_id", "settlement_tx_hash", "memo", "admin_memo", "created_at",
}

type withdrawalRepo struct {
	db *sql.DB
}

func NewWithdrawalRepository(db *sql.DB) WithdrawalRepository {
	return &withdrawalRepo{db: db}
}

func scanWithdrawal(row interface{ Scan(...any) error }) (models.WithdrawalRequest, error) {
	var (
		w           models.WithdrawalRequest
		adminID     sql.NullInt64
		processedAt sql.NullTime
		txID        sql.NullInt64
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.FeeAmount, &w.Asset, &w.DestinationAddress, &w.Status,
		&w.SettlementStatus, &adminID, &processedAt, &txID, &w.SettlementTxHash, &w.Memo, &w.AdminMemo, &w.CreatedAt)
	if adminID.Valid {
		w.AdminUserID = &adminID.Int64
	}
	if processedAt.Valid {
		w.ProcessedAt = &processedAt.Time
	}
	if txID.Valid {
		w.TransactionID = &txID.Int64
	}
	return w, err
}

func (r *withdrawalRepo) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	now := time.Now().UTC()

	query, args, err := psql.Insert("withdrawal_requests").
		Columns("user_id", "amount", "fee_amount", "asset", "destination_address", "status", "settlement_status", "memo", "created_at").
		Values(req.UserID, req.Amount, req.FeeAmount, req.Asset, req.DestinationAddress, req.Status, req.SettlementStatus, req.Memo, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&req.ID); err != nil {
		logger.Log.Error("failed to create withdrawal request", zap.Int64("user", req.UserID), zap.Error(err))
		return err
	}
	req.CreatedAt = now
	return nil
}

func (r *withdrawalRepo) GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	query, args, err := psql.Select(withdrawalColumns...).
		From("withdrawal_requests").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	w, err := scanWithdrawal(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrWithdrawalNotFound
	}
	if err != nil {
		logger.Log.Error("failed to get withdrawal request", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepo) ListByStatus(ctx context.Context, status models.WithdrawalStatus, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	b := psql.Select(withdrawalColumns...).
		From("withdrawal_requests").
		Where(sq.Eq{"status": status}).
		OrderBy("created_at", "id").
		Offset(offset)
	if limit > 0 {
		b = b.Limit(limit)
	}
	return r.list(ctx, b)
}

func (r *withdrawalRepo) ListByUser(ctx context.Context, userID int64, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	b := psql.Select(withdrawalColumns...).
		From("withdrawal_requests").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset)
	if limit > 0 {
		b = b.Limit(limit)
	}
	return r.list(ctx, b)
}

func (r *withdrawalRepo) ListStaleSettlements(ctx context.Context, status models.SettlementStatus, processedBefore time.Time) ([]models.WithdrawalRequest, error) {
	return r.list(ctx, psql.Select(withdrawalColumns...).
		From("withdrawal_requests").
		Where(sq.Eq{"settlement_status": status}).
		Where(sq.Lt{"processed_at": processedBefore}).
		OrderBy("processed_at"))
}

func (r *withdrawalRepo) list(ctx context.Context, b sq.SelectBuilder) ([]models.WithdrawalRequest, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("failed to query withdrawal requests", zap.Error(err))
		return nil, err
	}
	defer closeRows(rows)

	var out []models.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			logger.Log.Error("failed to scan withdrawal request", zap.Error(err))
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *withdrawalRepo) Decide(ctx context.Context, id int64, d models.Decision) error {
	query, args, err := psql.Update("withdrawal_requests").
		Set("status", d.Status).
		Set("settlement_status", d.Settlement).
		Set("admin_user_id", d.AdminUserID).
		Set("admin_memo", d.AdminMemo).
		Set("processed_at", d.ProcessedAt).
		Where(sq.Eq{"id": id, "status": models.WithdrawalPending}).
		ToSql()
	if err != nil {
		return err
	}

	return r.compareAndSwap(ctx, id, query, args, apperrors.ErrAlreadyDecided)
}

func (r *withdrawalRepo) UpdateSettlement(ctx context.Context, id int64, from models.SettlementStatus, upd models.SettlementUpdate) error {
	b := psql.Update("withdrawal_requests").
		Set("settlement_status", upd.Settlement).
		Where(sq.Eq{"id": id, "settlement_status": from})
	if upd.Status != "" {
		b = b.Set("status", upd.Status)
	}
	if upd.TransactionID != nil {
		b = b.Set("transaction_id", *upd.TransactionID)
	}
	if upd.TxHash != "" {
		b = b.Set("settlement_tx_hash", upd.TxHash)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}

	return r.compareAndSwap(ctx, id, query, args, apperrors.ErrSettlementChanged)
}

func (r *withdrawalRepo) compareAndSwap(ctx context.Context, id int64, query string, args []any, conflict error) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return apperrors.ErrTxHashAlreadyUsed
	}
	if err != nil {
		logger.Log.Error("failed to update withdrawal request", zap.Int64("id", id), zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return conflict
	}
	return nil
}
