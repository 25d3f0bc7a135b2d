package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultPageSize = 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps service errors onto status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusPaymentRequired)
	case errors.Is(err, apperrors.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrInvalidRequest):
		http.Error(w, "invalid request", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrWithdrawalNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperrors.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrUserInactive):
		http.Error(w, "account disabled", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrTxNotConfirmed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
		logger.Log.Error(op+" error", zap.Error(err))
	}
}

// pageParams reads page (1-based) and page_size query parameters.
func pageParams(r *http.Request) (offset, limit uint64, ok bool) {
	page, size := uint64(1), uint64(defaultPageSize)
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.ParseUint(v, 10, 64)
		if err != nil || p == 0 {
			return 0, 0, false
		}
		page = p
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil || s == 0 || s > 100 {
			return 0, 0, false
		}
		size = s
	}
	// OFFSET is a signed bigint in postgres.
	if page-1 > math.MaxInt64/size {
		return 0, 0, false
	}
	return (page - 1) * size, size, true
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
