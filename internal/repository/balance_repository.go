package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"go.uber.org/zap"
)

type BalanceRepository interface {
	// GetBalance returns a zero entry when the user holds nothing of asset.
	GetBalance(ctx context.Context, userID int64, asset string) (models.Balance, error)
	ListBalances(ctx context.Context, userID int64) ([]models.Balance, error)
	ListAll(ctx context.Context, offset, limit uint64) ([]models.Balance, error)
	// LockBalance creates the entry if needed and holds it until the enclosing
	// transaction ends. It must be called inside Transactor.WithinTx.
	LockBalance(ctx context.Context, userID int64, asset string) (models.Balance, error)
	SaveBalance(ctx context.Context, balance models.Balance) (models.Balance, error)
}

var balanceColumns = []string{"id", "user_id", "asset", "amount", "frozen_amount", "updated_at"}

type balanceRepo struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) BalanceRepository {
	return &balanceRepo{db: db}
}

func scanBalance(row interface{ Scan(...any) error }) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.ID, &b.UserID, &b.Asset, &b.Amount, &b.Frozen, &b.UpdatedAt)
	return b, err
}

func (r *balanceRepo) GetBalance(ctx context.Context, userID int64, asset string) (models.Balance, error) {
	query, args, err := psql.Select(balanceColumns...).
		From("balances").
		Where(sq.Eq{"user_id": userID, "asset": asset}).
		ToSql()
	if err != nil {
		return models.Balance{}, err
	}

	b, err := scanBalance(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewBalance(userID, asset), nil
	}
	if err != nil {
		logger.Log.Error("failed to get balance", zap.Int64("user", userID), zap.Error(err))
		return models.Balance{}, err
	}
	return b, nil
}

func (r *balanceRepo) ListBalances(ctx context.Context, userID int64) ([]models.Balance, error) {
	return r.list(ctx, psql.Select(balanceColumns...).
		From("balances").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("asset"))
}

func (r *balanceRepo) ListAll(ctx context.Context, offset, limit uint64) ([]models.Balance, error) {
	b := psql.Select(balanceColumns...).
		From("balances").
		OrderBy("user_id", "asset").
		Offset(offset)
	if limit > 0 {
		b = b.Limit(limit)
	}
	return r.list(ctx, b)
}

func (r *balanceRepo) list(ctx context.Context, b sq.SelectBuilder) ([]models.Balance, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("failed to query balances", zap.Error(err))
		return nil, err
	}
	defer closeRows(rows)

	var balances []models.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			logger.Log.Error("failed to scan balance", zap.Error(err))
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}

func (r *balanceRepo) LockBalance(ctx context.Context, userID int64, asset string) (models.Balance, error) {
	q := conn(ctx, r.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO balances (user_id, asset, amount, frozen_amount)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (user_id, asset) DO NOTHING
	`, userID, asset)
	if err != nil {
		logger.Log.Error("failed to create balance", zap.Int64("user", userID), zap.Error(err))
		return models.Balance{}, err
	}

	query, args, err := psql.Select(balanceColumns...).
		From("balances").
		Where(sq.Eq{"user_id": userID, "asset": asset}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return models.Balance{}, err
	}

	b, err := scanBalance(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		logger.Log.Error("failed to lock balance", zap.Int64("user", userID), zap.Error(err))
		return models.Balance{}, err
	}
	return b, nil
}

func (r *balanceRepo) SaveBalance(ctx context.Context, balance models.Balance) (models.Balance, error) {
	balance.UpdatedAt = time.Now().UTC()

	query, args, err := psql.Update("balances").
		Set("amount", balance.Amount).
		Set("frozen_amount", balance.Frozen).
		Set("updated_at", balance.UpdatedAt).
		Where(sq.Eq{"user_id": balance.UserID, "asset": balance.Asset}).
		ToSql()
	if err != nil {
		return models.Balance{}, err
	}

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("failed to save balance", zap.Int64("user", balance.UserID), zap.Error(err))
		return models.Balance{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Balance{}, err
	}
	if n == 0 {
		return models.Balance{}, errors.New("balance entry missing, lock it first")
	}
	return balance, nil
}
