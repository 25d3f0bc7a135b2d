package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/middleware"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/service"
	"go.uber.org/zap"
)

type decisionRequest struct {
	Approved  bool   `json:"approved"`
	AdminMemo string `json:"admin_memo,omitempty"`
}

type resolveRequest struct {
	TxHash string `json:"tx_hash,omitempty"`
}

// settlementResponse carries a request whose chain relay may not have settled.
type settlementResponse struct {
	Request             *models.WithdrawalRequest `json:"request"`
	SettlementUncertain bool                      `json:"settlement_uncertain,omitempty"`
	Error               string                    `json:"error,omitempty"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in service.WithdrawalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	req, err := h.withdrawalService.Request(r.Context(), userID, in)
	if err != nil {
		writeError(w, err, "withdrawal request")
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

func (h *Handler) ListMyWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	offset, limit, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid pagination", http.StatusBadRequest)
		return
	}

	reqs, err := h.withdrawalService.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		writeError(w, err, "list withdrawals")
		return
	}
	if len(reqs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *Handler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid pagination", http.StatusBadRequest)
		return
	}

	reqs, err := h.withdrawalService.ListPending(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err, "list pending withdrawals")
		return
	}
	if reqs == nil {
		reqs = []models.WithdrawalRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *Handler) DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	req, err := h.withdrawalService.Decide(r.Context(), id, adminID, body.Approved, body.AdminMemo)
	writeSettlement(w, req, err, "withdrawal decision")
}

func (h *Handler) ResolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	req, err := h.withdrawalService.ResolveSettlement(r.Context(), id, adminID, body.TxHash)
	writeSettlement(w, req, err, "withdrawal resolve")
}

func writeSettlement(w http.ResponseWriter, req *models.WithdrawalRequest, err error, op string) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, settlementResponse{Request: req})
	case errors.Is(err, apperrors.ErrSettlementUncertain):
		logger.Log.Warn(op+" left settlement uncertain", zap.Error(err))
		writeJSON(w, http.StatusAccepted, settlementResponse{Request: req, SettlementUncertain: true, Error: err.Error()})
	case errors.Is(err, apperrors.ErrSettlementFailed):
		writeJSON(w, http.StatusOK, settlementResponse{Request: req, Error: err.Error()})
	default:
		writeError(w, err, op)
	}
}
