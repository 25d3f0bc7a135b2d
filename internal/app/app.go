package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a2sh3r/walletd/internal/blockchain"
	"github.com/a2sh3r/walletd/internal/config"
	"github.com/a2sh3r/walletd/internal/database"
	"github.com/a2sh3r/walletd/internal/handlers"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/repository"
	"github.com/a2sh3r/walletd/internal/repository/memory"
	"github.com/a2sh3r/walletd/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type App struct {
	server  *http.Server
	db      *sql.DB
	chain   *blockchain.HTTPClient
	watcher *service.SettlementWatcher
}

type repositories struct {
	tx           repository.Transactor
	users        repository.UserRepository
	balances     repository.BalanceRepository
	transactions repository.TransactionRepository
	withdrawals  repository.WithdrawalRepository
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ParseFlags()

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return New(cfg)
}

// New wires the application from an already loaded config.
func New(cfg *config.Config) (*App, error) {
	var (
		db    *sql.DB
		repos repositories
	)

	if cfg.DatabaseURI == "" {
		logger.Log.Warn("DATABASE_URI is empty, balances are kept in memory only")
		store := memory.NewStore()
		repos = repositories{
			tx:           store.Transactor(),
			users:        store.Users(),
			balances:     store.Balances(),
			transactions: store.Transactions(),
			withdrawals:  store.Withdrawals(),
		}
	} else {
		var err error
		db, err = database.InitDB(cfg)
		if err != nil {
			logger.Log.Error("Database connection failed", zap.Error(err))
			return nil, err
		}
		repos = repositories{
			tx:           repository.NewTransactor(db),
			users:        repository.NewUserRepository(db),
			balances:     repository.NewBalanceRepository(db),
			transactions: repository.NewTransactionRepository(db),
			withdrawals:  repository.NewWithdrawalRepository(db),
		}
	}

	chainClient := blockchain.NewClient(cfg.BlockchainAddress, cfg.BlockchainKey, cfg.SendTimeout)
	chain := blockchain.Instrument(chainClient)

	assets := service.Assets{Default: cfg.DefaultAsset, Supported: cfg.SupportedAssets}
	policy := service.WithdrawalPolicy{
		Min:         cfg.MinWithdrawal,
		Max:         cfg.MaxWithdrawal,
		FeeRate:     cfg.WithdrawalFee,
		SendTimeout: cfg.SendTimeout,
	}

	ledger := service.NewLedgerService(repos.tx, repos.balances, repos.transactions, repos.users, assets)
	services := handlers.Services{
		Users:       service.NewUserService(repos.users, cfg.AdminLogins),
		Ledger:      ledger,
		Transfers:   service.NewTransferService(repos.tx, repos.users, repos.balances, repos.transactions, ledger, assets),
		Withdrawals: service.NewWithdrawalService(repos.tx, repos.users, repos.withdrawals, repos.transactions, ledger, chain, policy, assets),
		Journal:     service.NewJournalService(repos.transactions),
		Admin:       service.NewAdminService(chain, repos.withdrawals, repos.transactions, cfg.HotWalletAddress, assets),
	}

	handler := handlers.NewHandler(services, cfg.SecretKey)
	r := handlers.NewRouter(handler, handlers.RouterOptions{
		RateLimit: rate.Limit(cfg.RateLimit),
		RateBurst: cfg.RateBurst,
	})

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		server:  server,
		db:      db,
		chain:   chainClient,
		watcher: service.NewSettlementWatcher(repos.withdrawals, cfg.SettlementStaleAfter, cfg.WatchInterval),
	}, nil
}

// Run serves HTTP and sweeps stale settlements until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("server started", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.watcher.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		logger.Log.Info("shutting down server...")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("server shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}

// Shutdown releases the database and the gateway client after Run returned.
func (a *App) Shutdown(ctx context.Context) error {
	a.chain.Close()

	if a.db == nil {
		return nil
	}

	logger.Log.Info("closing database connection...")
	if err := a.db.Close(); err != nil {
		logger.Log.Error("failed to close database", zap.Error(err))
		return err
	}

	return nil
}
