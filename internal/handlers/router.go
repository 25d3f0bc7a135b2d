package handlers

import (
	"net/http"
	"time"

	"github.com/a2sh3r/walletd/internal/middleware"
	"github.com/a2sh3r/walletd/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Services struct {
	Users       service.UserService
	Ledger      service.LedgerService
	Transfers   service.TransferService
	Withdrawals service.WithdrawalService
	Journal     service.JournalService
	Admin       service.AdminService
}

type Handler struct {
	userService       service.UserService
	ledgerService     service.LedgerService
	transferService   service.TransferService
	withdrawalService service.WithdrawalService
	journalService    service.JournalService
	adminService      service.AdminService
	secretKey         string
	startedAt         time.Time
}

func NewHandler(s Services, secretKey string) *Handler {
	return &Handler{
		userService:       s.Users,
		ledgerService:     s.Ledger,
		transferService:   s.Transfers,
		withdrawalService: s.Withdrawals,
		journalService:    s.Journal,
		adminService:      s.Admin,
		secretKey:         secretKey,
		startedAt:         time.Now(),
	}
}

type RouterOptions struct {
	RateLimit rate.Limit
	RateBurst int
}

func NewRouter(handler *Handler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewLoggingMiddleware())
	r.Use(middleware.NewMetricsMiddleware())
	r.Use(middleware.WithGzip())

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid URL format", http.StatusNotFound)
	})

	r.Get("/hc", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.NewUserRateLimiter(opts.RateLimit, opts.RateBurst)

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(limiter))
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.With(
			middleware.JWTMiddleware(handler.secretKey),
			middleware.ActiveUser(handler.userService.GetUserByID),
		).Get("/me", handler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(handler.secretKey))
		r.Use(middleware.ActiveUser(handler.userService.GetUserByID))
		r.Use(middleware.RateLimitMiddleware(limiter))

		r.Route("/api/wallet", func(r chi.Router) {
			r.Get("/balance", handler.GetBalance)
			r.Post("/transfer", handler.Transfer)
			r.Get("/address/validate", handler.ValidateAddress)
		})

		r.Route("/api/tx", func(r chi.Router) {
			r.Post("/withdraw", handler.RequestWithdrawal)
			r.Get("/withdraw/requests", handler.ListMyWithdrawals)
			r.Get("/transactions", handler.ListTransactions)
			r.Get("/transactions/{id}", handler.GetTransaction)
			r.Get("/status/{hash}", handler.TxStatus)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", handler.ListUsers)
			r.Post("/users/{id}/active", handler.SetUserActive)
			r.Get("/balances", handler.BalancesOverview)
			r.Post("/deposits", handler.Deposit)
			r.Get("/withdrawals/pending", handler.ListPendingWithdrawals)
			r.Post("/withdrawals/{id}/decision", handler.DecideWithdrawal)
			r.Post("/withdrawals/{id}/resolve", handler.ResolveWithdrawal)
			r.Get("/system/status", handler.SystemStatus)
			r.Post("/send", handler.AdminSend)
		})
	})

	return r
}
