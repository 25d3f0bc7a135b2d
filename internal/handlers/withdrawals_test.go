package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2sh3r/walletd/internal/apperrors"
	service_mocks "github.com/a2sh3r/walletd/internal/mocks/service_mocks"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandler_RequestWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockWithdrawals := service_mocks.NewMockWithdrawalService(ctrl)
	h := &Handler{withdrawalService: mockWithdrawals}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "accepted",
			body: `{"amount":"100","destination_address":"TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7"}`,
			mockSetup: func() {
				mockWithdrawals.EXPECT().Request(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ int64, in service.WithdrawalInput) (*models.WithdrawalRequest, error) {
						assert.True(t, in.Amount.Equal(decimal.NewFromInt(100)))
						return &models.WithdrawalRequest{ID: 5, Status: models.WithdrawalPending}, nil
					})
			},
			wantStatusCode: http.StatusAccepted,
		},
		{
			name: "outside limits",
			body: `{"amount":"1","destination_address":"T"}`,
			mockSetup: func() {
				mockWithdrawals.EXPECT().Request(gomock.Any(), int64(1), gomock.Any()).Return(nil, apperrors.ErrWithdrawalLimits)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "insufficient funds",
			body: `{"amount":"100","destination_address":"T"}`,
			mockSetup: func() {
				mockWithdrawals.EXPECT().Request(gomock.Any(), int64(1), gomock.Any()).
					Return(nil, fmt.Errorf("%w: available 3", apperrors.ErrInsufficientFunds))
			},
			wantStatusCode: http.StatusPaymentRequired,
		},
		{
			name:           "broken json",
			body:           `[`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/tx/withdraw", bytes.NewBufferString(tt.body)), 1, false)
			w := httptest.NewRecorder()
			h.RequestWithdrawal(w, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}

func TestHandler_ListMyWithdrawals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockWithdrawals := service_mocks.NewMockWithdrawalService(ctrl)
	h := &Handler{withdrawalService: mockWithdrawals}

	mockWithdrawals.EXPECT().ListByUser(gomock.Any(), int64(1), uint64(10), uint64(10)).
		Return([]models.WithdrawalRequest{{ID: 1}}, nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/tx/withdraw/requests?page=2&page_size=10", nil), 1, false)
	w := httptest.NewRecorder()
	h.ListMyWithdrawals(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mockWithdrawals.EXPECT().ListByUser(gomock.Any(), int64(1), uint64(0), uint64(defaultPageSize)).Return(nil, nil)
	req = withUser(httptest.NewRequest(http.MethodGet, "/api/tx/withdraw/requests", nil), 1, false)
	w = httptest.NewRecorder()
	h.ListMyWithdrawals(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = withUser(httptest.NewRequest(http.MethodGet, "/api/tx/withdraw/requests?page_size=500", nil), 1, false)
	w = httptest.NewRecorder()
	h.ListMyWithdrawals(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DecideWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockWithdrawals := service_mocks.NewMockWithdrawalService(ctrl)
	h := &Handler{withdrawalService: mockWithdrawals}

	settled := &models.WithdrawalRequest{ID: 5, Status: models.WithdrawalCompleted, SettlementStatus: models.SettlementSettled}
	unknown := &models.WithdrawalRequest{ID: 5, Status: models.WithdrawalCompleted, SettlementStatus: models.SettlementUnknown}
	failed := &models.WithdrawalRequest{ID: 5, Status: models.WithdrawalFailed, SettlementStatus: models.SettlementFailed}

	tests := []struct {
		name           string
		id             string
		body           string
		mockReq        *models.WithdrawalRequest
		mockErr        error
		callsService   bool
		wantStatusCode int
		wantUncertain  bool
	}{
		{"settled", "5", `{"approved":true}`, settled, nil, true, http.StatusOK, false},
		{"relay outcome unknown", "5", `{"approved":true}`, unknown, fmt.Errorf("%w: timeout", apperrors.ErrSettlementUncertain), true, http.StatusAccepted, true},
		{"relay rejected", "5", `{"approved":true}`, failed, fmt.Errorf("%w: 422", apperrors.ErrSettlementFailed), true, http.StatusOK, false},
		{"already decided", "5", `{"approved":false}`, nil, apperrors.ErrAlreadyDecided, true, http.StatusConflict, false},
		{"not found", "6", `{"approved":false}`, nil, apperrors.ErrWithdrawalNotFound, true, http.StatusNotFound, false},
		{"bad id", "abc", `{"approved":true}`, nil, nil, false, http.StatusBadRequest, false},
		{"internal error", "5", `{"approved":false}`, nil, errors.New("db down"), true, http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.callsService {
				mockWithdrawals.EXPECT().Decide(gomock.Any(), gomock.Any(), int64(9), gomock.Any(), "").Return(tt.mockReq, tt.mockErr)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/admin/withdrawals/"+tt.id+"/decision", bytes.NewBufferString(tt.body))
			req = withURLParam(withUser(req, 9, true), "id", tt.id)
			w := httptest.NewRecorder()
			h.DecideWithdrawal(w, req)
			require.Equal(t, tt.wantStatusCode, w.Code)

			if tt.mockReq != nil {
				var resp settlementResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantUncertain, resp.SettlementUncertain)
				assert.Equal(t, tt.mockReq.SettlementStatus, resp.Request.SettlementStatus)
				assert.Equal(t, tt.mockErr != nil, resp.Error != "")
			}
		})
	}
}

func TestHandler_ResolveWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockWithdrawals := service_mocks.NewMockWithdrawalService(ctrl)
	h := &Handler{withdrawalService: mockWithdrawals}

	tests := []struct {
		name           string
		body           string
		txHash         string
		mockErr        error
		wantStatusCode int
	}{
		{"release", `{}`, "", nil, http.StatusOK},
		{"confirmed hash", `{"tx_hash":"abc"}`, "abc", nil, http.StatusOK},
		{"hash not on chain", `{"tx_hash":"abc"}`, "abc", apperrors.ErrTxNotConfirmed, http.StatusUnprocessableEntity},
		{"nothing to resolve", `{}`, "", apperrors.ErrNothingToResolve, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.WithdrawalRequest
			if tt.mockErr == nil {
				got = &models.WithdrawalRequest{ID: 5, SettlementStatus: models.SettlementReleased}
			}
			mockWithdrawals.EXPECT().ResolveSettlement(gomock.Any(), int64(5), int64(9), tt.txHash).Return(got, tt.mockErr)

			req := httptest.NewRequest(http.MethodPost, "/api/admin/withdrawals/5/resolve", bytes.NewBufferString(tt.body))
			req = withURLParam(withUser(req, 9, true), "id", "5")
			w := httptest.NewRecorder()
			h.ResolveWithdrawal(w, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}

func TestHandler_ListPendingWithdrawals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockWithdrawals := service_mocks.NewMockWithdrawalService(ctrl)
	h := &Handler{withdrawalService: mockWithdrawals}

	mockWithdrawals.EXPECT().ListPending(gomock.Any(), uint64(0), uint64(defaultPageSize)).Return(nil, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals/pending", nil), 9, true)
	w := httptest.NewRecorder()
	h.ListPendingWithdrawals(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
