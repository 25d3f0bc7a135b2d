// Package memory keeps the whole ledger in process. One mutex guards the
// store and is held for the full duration of a WithinTx call, which gives
// the same per-entry serialization as row locks, at coarser grain.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
)

type balanceKey struct {
	userID int64
	asset  string
}

type state struct {
	users        map[int64]models.User
	balances     map[balanceKey]models.Balance
	transactions map[int64]models.Transaction
	withdrawals  map[int64]models.WithdrawalRequest

	nextUserID       int64
	nextBalanceID    int64
	nextTxID         int64
	nextWithdrawalID int64
}

func newState() *state {
	return &state{
		users:        make(map[int64]models.User),
		balances:     make(map[balanceKey]models.Balance),
		transactions: make(map[int64]models.Transaction),
		withdrawals:  make(map[int64]models.WithdrawalRequest),
	}
}

func (s *state) clone() *state {
	c := *s
	c.users = maps.Clone(s.users)
	c.balances = maps.Clone(s.balances)
	c.transactions = maps.Clone(s.transactions)
	c.withdrawals = maps.Clone(s.withdrawals)
	return &c
}

type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

// do runs fn against the current state, taking the store lock unless ctx
// already belongs to a transaction of this store.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

func (s *Store) Transactor() repository.Transactor {
	return s
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{s: s}
}

func (s *Store) Balances() repository.BalanceRepository {
	return &balanceRepo{s: s}
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &transactionRepo{s: s}
}

func (s *Store) Withdrawals() repository.WithdrawalRepository {
	return &withdrawalRepo{s: s}
}

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}
