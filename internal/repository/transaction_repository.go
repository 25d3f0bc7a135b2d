package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"go.uber.org/zap"
)

// TransactionRepository is the append-only journal of balance-affecting events.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.TransactionStatus, refTxID string) error
}

var transactionColumns = []string{
	"id", "user_id", "type", "amount", "asset", "fee_amount", "status",
	"ref_tx_id", "related_user_id", "memo", "created_at", "updated_at",
}

type transactionRepo struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var (
		t       models.Transaction
		related sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Asset, &t.FeeAmount, &t.Status,
		&t.RefTxID, &related, &t.Memo, &t.CreatedAt, &t.UpdatedAt)
	if related.Valid {
		t.RelatedUserID = &related.Int64
	}
	return t, err
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	now := time.Now().UTC()

	query, args, err := psql.Insert("transactions").
		Columns("user_id", "type", "amount", "asset", "fee_amount", "status", "ref_tx_id", "related_user_id", "memo", "created_at", "updated_at").
		Values(tx.UserID, tx.Type, tx.Amount, tx.Asset, tx.FeeAmount, tx.Status, tx.RefTxID, tx.RelatedUserID, tx.Memo, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&tx.ID); err != nil {
		logger.Log.Error("failed to create transaction", zap.Int64("user", tx.UserID), zap.Error(err))
		return err
	}
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTransaction(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		logger.Log.Error("failed to get transaction", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	b := psql.Select(transactionColumns...).
		From("transactions").
		OrderBy("created_at DESC", "id DESC").
		Offset(filter.Offset)
	if filter.UserID != 0 {
		b = b.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Type != "" {
		b = b.Where(sq.Eq{"type": filter.Type})
	}
	if filter.Asset != "" {
		b = b.Where(sq.Eq{"asset": filter.Asset})
	}
	if filter.RefTxID != "" {
		b = b.Where(sq.Eq{"ref_tx_id": filter.RefTxID})
	}
	if filter.Limit > 0 {
		b = b.Limit(filter.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("failed to query transactions", zap.Error(err))
		return nil, err
	}
	defer closeRows(rows)

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			logger.Log.Error("failed to scan transaction", zap.Error(err))
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, id int64, from, to models.TransactionStatus, refTxID string) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusChange, from, to)
	}

	b := psql.Update("transactions").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": from})
	if refTxID != "" {
		b = b.Set("ref_tx_id", refTxID)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("failed to update transaction status", zap.Int64("id", id), zap.Error(err))
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
		return apperrors.ErrInvalidStatusChange
	}
	return nil
}
