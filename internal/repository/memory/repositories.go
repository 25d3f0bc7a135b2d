package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/models"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.s.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Login == user.Login {
				return apperrors.ErrUserAlreadyExists
			}
		}
		st.nextUserID++
		user.ID = st.nextUserID
		user.CreatedAt = r.s.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var found *models.User
	err := r.s.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Login == login {
				found = &u
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return found, err
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var found *models.User
	err := r.s.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepo) ListUsers(ctx context.Context, offset, limit uint64) ([]models.User, error) {
	var out []models.User
	err := r.s.do(ctx, func(st *state) error {
		users := slices.Collect(maps.Values(st.users))
		slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
		out = page(users, offset, limit)
		return nil
	})
	return out, err
}

func (r *userRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return r.s.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		u.IsActive = active
		st.users[id] = u
		return nil
	})
}

type balanceRepo struct {
	s *Store
}

func (r *balanceRepo) GetBalance(ctx context.Context, userID int64, asset string) (models.Balance, error) {
	b := models.NewBalance(userID, asset)
	err := r.s.do(ctx, func(st *state) error {
		if existing, ok := st.balances[balanceKey{userID, asset}]; ok {
			b = existing
		}
		return nil
	})
	return b, err
}

func (r *balanceRepo) ListBalances(ctx context.Context, userID int64) ([]models.Balance, error) {
	var out []models.Balance
	err := r.s.do(ctx, func(st *state) error {
		for k, b := range st.balances {
			if k.userID == userID {
				out = append(out, b)
			}
		}
		slices.SortFunc(out, func(a, b models.Balance) int { return cmp.Compare(a.Asset, b.Asset) })
		return nil
	})
	return out, err
}

func (r *balanceRepo) ListAll(ctx context.Context, offset, limit uint64) ([]models.Balance, error) {
	var out []models.Balance
	err := r.s.do(ctx, func(st *state) error {
		all := slices.Collect(maps.Values(st.balances))
		slices.SortFunc(all, func(a, b models.Balance) int {
			return cmp.Or(cmp.Compare(a.UserID, b.UserID), cmp.Compare(a.Asset, b.Asset))
		})
		out = page(all, offset, limit)
		return nil
	})
	return out, err
}

func (r *balanceRepo) LockBalance(ctx context.Context, userID int64, asset string) (models.Balance, error) {
	if !r.s.inTx(ctx) {
		return models.Balance{}, errors.New("balance lock requires a transaction")
	}

	st := r.s.data
	key := balanceKey{userID, asset}
	b, ok := st.balances[key]
	if !ok {
		st.nextBalanceID++
		b = models.NewBalance(userID, asset)
		b.ID = st.nextBalanceID
		b.UpdatedAt = r.s.now()
		st.balances[key] = b
	}
	return b, nil
}

func (r *balanceRepo) SaveBalance(ctx context.Context, balance models.Balance) (models.Balance, error) {
	err := r.s.do(ctx, func(st *state) error {
		key := balanceKey{balance.UserID, balance.Asset}
		existing, ok := st.balances[key]
		if !ok {
			return errors.New("balance entry missing, lock it first")
		}
		if balance.Frozen.IsNegative() || balance.Frozen.GreaterThan(balance.Amount) {
			return fmt.Errorf("balance constraint violated for user %d", balance.UserID)
		}
		balance.ID = existing.ID
		balance.UpdatedAt = r.s.now()
		st.balances[key] = balance
		return nil
	})
	return balance, err
}

type transactionRepo struct {
	s *Store
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	return r.s.do(ctx, func(st *state) error {
		st.nextTxID++
		now := r.s.now()
		tx.ID = st.nextTxID
		tx.CreatedAt = now
		tx.UpdatedAt = now
		st.transactions[tx.ID] = *tx
		return nil
	})
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var found *models.Transaction
	err := r.s.do(ctx, func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return apperrors.ErrTransactionNotFound
		}
		found = &t
		return nil
	})
	return found, err
}

func (r *transactionRepo) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.s.do(ctx, func(st *state) error {
		var matched []models.Transaction
		for _, t := range st.transactions {
			if filter.UserID != 0 && t.UserID != filter.UserID {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			if filter.Asset != "" && t.Asset != filter.Asset {
				continue
			}
			if filter.RefTxID != "" && t.RefTxID != filter.RefTxID {
				continue
			}
			matched = append(matched, t)
		}
		slices.SortFunc(matched, func(a, b models.Transaction) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		})
		out = page(matched, filter.Offset, filter.Limit)
		return nil
	})
	return out, err
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, id int64, from, to models.TransactionStatus, refTxID string) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusChange, from, to)
	}
	return r.s.do(ctx, func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return apperrors.ErrTransactionNotFound
		}
		if t.Status != from {
			return apperrors.ErrInvalidStatusChange
		}
		t.Status = to
		if refTxID != "" {
			t.RefTxID = refTxID
		}
		t.UpdatedAt = r.s.now()
		st.transactions[id] = t
		return nil
	})
}

type withdrawalRepo struct {
	s *Store
}

func (r *withdrawalRepo) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	return r.s.do(ctx, func(st *state) error {
		st.nextWithdrawalID++
		req.ID = st.nextWithdrawalID
		req.CreatedAt = r.s.now()
		st.withdrawals[req.ID] = *req
		return nil
	})
}

func (r *withdrawalRepo) GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	var found *models.WithdrawalRequest
	err := r.s.do(ctx, func(st *state) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return apperrors.ErrWithdrawalNotFound
		}
		found = &w
		return nil
	})
	return found, err
}

func (r *withdrawalRepo) filter(ctx context.Context, keep func(models.WithdrawalRequest) bool, less func(a, b models.WithdrawalRequest) int, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	var out []models.WithdrawalRequest
	err := r.s.do(ctx, func(st *state) error {
		var matched []models.WithdrawalRequest
		for _, w := range st.withdrawals {
			if keep(w) {
				matched = append(matched, w)
			}
		}
		slices.SortFunc(matched, less)
		out = page(matched, offset, limit)
		return nil
	})
	return out, err
}

func (r *withdrawalRepo) ListByStatus(ctx context.Context, status models.WithdrawalStatus, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	return r.filter(ctx,
		func(w models.WithdrawalRequest) bool { return w.Status == status },
		func(a, b models.WithdrawalRequest) int { return cmp.Compare(a.ID, b.ID) },
		offset, limit)
}

func (r *withdrawalRepo) ListByUser(ctx context.Context, userID int64, offset, limit uint64) ([]models.WithdrawalRequest, error) {
	return r.filter(ctx,
		func(w models.WithdrawalRequest) bool { return w.UserID == userID },
		func(a, b models.WithdrawalRequest) int { return cmp.Compare(b.ID, a.ID) },
		offset, limit)
}

func (r *withdrawalRepo) ListStaleSettlements(ctx context.Context, status models.SettlementStatus, processedBefore time.Time) ([]models.WithdrawalRequest, error) {
	return r.filter(ctx,
		func(w models.WithdrawalRequest) bool {
			return w.SettlementStatus == status && w.ProcessedAt != nil && w.ProcessedAt.Before(processedBefore)
		},
		func(a, b models.WithdrawalRequest) int { return a.ProcessedAt.Compare(*b.ProcessedAt) },
		0, 0)
}

func (r *withdrawalRepo) Decide(ctx context.Context, id int64, d models.Decision) error {
	return r.s.do(ctx, func(st *state) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return apperrors.ErrWithdrawalNotFound
		}
		if w.Status != models.WithdrawalPending {
			return apperrors.ErrAlreadyDecided
		}
		adminID := d.AdminUserID
		processedAt := d.ProcessedAt
		w.Status = d.Status
		w.SettlementStatus = d.Settlement
		w.AdminUserID = &adminID
		w.AdminMemo = d.AdminMemo
		w.ProcessedAt = &processedAt
		st.withdrawals[id] = w
		return nil
	})
}

func (r *withdrawalRepo) UpdateSettlement(ctx context.Context, id int64, from models.SettlementStatus, upd models.SettlementUpdate) error {
	return r.s.do(ctx, func(st *state) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return apperrors.ErrWithdrawalNotFound
		}
		if w.SettlementStatus != from {
			return apperrors.ErrSettlementChanged
		}
		if upd.TxHash != "" {
			for otherID, other := range st.withdrawals {
				if otherID != id && other.SettlementTxHash == upd.TxHash {
					return apperrors.ErrTxHashAlreadyUsed
				}
			}
		}
		w.SettlementStatus = upd.Settlement
		if upd.Status != "" {
			w.Status = upd.Status
		}
		if upd.TransactionID != nil {
			txID := *upd.TransactionID
			w.TransactionID = &txID
		}
		if upd.TxHash != "" {
			w.SettlementTxHash = upd.TxHash
		}
		st.withdrawals[id] = w
		return nil
	})
}
