package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2sh3r/walletd/internal/apperrors"
	service_mocks "github.com/a2sh3r/walletd/internal/mocks/service_mocks"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ListUsersHidesPasswords(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockUsers := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUsers}

	mockUsers.EXPECT().ListUsers(gomock.Any(), uint64(0), uint64(defaultPageSize)).
		Return([]models.User{{ID: 1, Login: "alice", Password: "$2a$10$secret"}}, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), 9, true)
	w := httptest.NewRecorder()
	h.ListUsers(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestHandler_SetUserActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockUsers := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUsers}

	mockUsers.EXPECT().SetActive(gomock.Any(), int64(4), false).Return(nil)
	mockUsers.EXPECT().SetActive(gomock.Any(), int64(5), true).Return(apperrors.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/4/active", bytes.NewBufferString(`{"active":false}`))
	w := httptest.NewRecorder()
	h.SetUserActive(w, withURLParam(req, "id", "4"))
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/users/5/active", bytes.NewBufferString(`{"active":true}`))
	w = httptest.NewRecorder()
	h.SetUserActive(w, withURLParam(req, "id", "5"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Deposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockLedger := service_mocks.NewMockLedgerService(ctrl)
	h := &Handler{ledgerService: mockLedger}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "credited",
			body: `{"user_id":3,"amount":"25","ref_tx_id":"chain-1"}`,
			mockSetup: func() {
				mockLedger.EXPECT().Deposit(gomock.Any(), int64(3), "", gomock.Any(), "chain-1", "").
					Return(&models.Transaction{ID: 1, UserID: 3, Type: models.TransactionDeposit}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "unknown user",
			body: `{"user_id":404,"amount":"25"}`,
			mockSetup: func() {
				mockLedger.EXPECT().Deposit(gomock.Any(), int64(404), "", gomock.Any(), "", "").Return(nil, apperrors.ErrUserNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "missing user",
			body:           `{"amount":"25"}`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/admin/deposits", bytes.NewBufferString(tt.body)), 9, true)
			w := httptest.NewRecorder()
			h.Deposit(w, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}

func TestHandler_AdminSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockAdmin := service_mocks.NewMockAdminService(ctrl)
	h := &Handler{adminService: mockAdmin}

	pending := &models.Transaction{ID: 1, Type: models.TransactionPayment, Status: models.TransactionPending}

	tests := []struct {
		name           string
		mockRecord     *models.Transaction
		mockErr        error
		wantStatusCode int
		wantUncertain  bool
	}{
		{"sent", &models.Transaction{ID: 1, Status: models.TransactionCompleted}, nil, http.StatusOK, false},
		{"unknown outcome", pending, fmt.Errorf("%w: timeout", apperrors.ErrSettlementUncertain), http.StatusAccepted, true},
		{"hot wallet short", nil, apperrors.ErrInsufficientFunds, http.StatusPaymentRequired, false},
		{"bad address", nil, apperrors.ErrInvalidAddress, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAdmin.EXPECT().Send(gomock.Any(), int64(9), gomock.AssignableToTypeOf(service.PayoutInput{})).Return(tt.mockRecord, tt.mockErr)

			body := `{"to":"TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7","amount":"5"}`
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/admin/send", bytes.NewBufferString(body)), 9, true)
			w := httptest.NewRecorder()
			h.AdminSend(w, req)
			require.Equal(t, tt.wantStatusCode, w.Code)

			if tt.mockRecord != nil {
				var resp payoutResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantUncertain, resp.SettlementUncertain)
			}
		})
	}
}

func TestHandler_SystemStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockAdmin := service_mocks.NewMockAdminService(ctrl)
	h := &Handler{adminService: mockAdmin}

	mockAdmin.EXPECT().SystemStatus(gomock.Any()).Return(&service.SystemStatus{
		HotWalletAddress:   "Thot",
		HotWalletBalances:  map[string]decimal.Decimal{"USDT": decimal.NewFromInt(10)},
		PendingWithdrawals: 2,
	}, nil)

	w := httptest.NewRecorder()
	h.SystemStatus(w, httptest.NewRequest(http.MethodGet, "/api/admin/system/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got service.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.PendingWithdrawals)
	assert.True(t, got.HotWalletBalances["USDT"].Equal(decimal.NewFromInt(10)))
}
