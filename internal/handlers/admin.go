package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/middleware"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type depositRequest struct {
	UserID  int64           `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Asset   string          `json:"asset,omitempty"`
	RefTxID string          `json:"ref_tx_id,omitempty"`
	Memo    string          `json:"memo,omitempty"`
}

type activeRequest struct {
	Active bool `json:"active"`
}

type payoutResponse struct {
	Transaction         *models.Transaction `json:"transaction"`
	SettlementUncertain bool                `json:"settlement_uncertain,omitempty"`
	Error               string              `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid pagination", http.StatusBadRequest)
		return
	}

	users, err := h.userService.ListUsers(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err, "list users")
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body activeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if err := h.userService.SetActive(r.Context(), id, body.Active); err != nil {
		writeError(w, err, "set user active")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) BalancesOverview(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid pagination", http.StatusBadRequest)
		return
	}

	balances, err := h.ledgerService.Overview(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err, "balances overview")
		return
	}
	if balances == nil {
		balances = []models.Balance{}
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserID(r.Context())

	var body depositRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID <= 0 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	record, err := h.ledgerService.Deposit(r.Context(), body.UserID, body.Asset, body.Amount, body.RefTxID, body.Memo)
	if err != nil {
		writeError(w, err, "deposit")
		return
	}

	logger.Log.Info("manual deposit", zap.Int64("admin", adminID), zap.Int64("user", body.UserID), zap.Int64("transaction", record.ID))
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.adminService.SystemStatus(r.Context())
	if err != nil {
		writeError(w, err, "system status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) AdminSend(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in service.PayoutInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	record, err := h.adminService.Send(r.Context(), adminID, in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, payoutResponse{Transaction: record})
	case errors.Is(err, apperrors.ErrSettlementUncertain):
		writeJSON(w, http.StatusAccepted, payoutResponse{Transaction: record, SettlementUncertain: true, Error: err.Error()})
	case errors.Is(err, apperrors.ErrSettlementFailed):
		writeJSON(w, http.StatusOK, payoutResponse{Transaction: record, Error: err.Error()})
	default:
		writeError(w, err, "admin send")
	}
}
