package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2sh3r/walletd/internal/apperrors"
	service_mocks "github.com/a2sh3r/walletd/internal/mocks/service_mocks"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserService := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUserService, secretKey: "test"}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"login":"user","password":"pass"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "user", "pass").Return(nil)
				mockUserService.EXPECT().GetUserByLogin(gomock.Any(), "user").Return(&models.User{ID: 1, Login: "user"}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "user already exists",
			body: `{"login":"user","password":"pass"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "user", "pass").Return(apperrors.ErrUserAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "invalid json",
			body:           `{"login":""}`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "service error",
			body: `{"login":"user","password":"pass"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "user", "pass").Return(errors.New("fail"))
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Register(w, req)
			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
			err := resp.Body.Close()
			if err != nil {
				return
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserService := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUserService, secretKey: "test"}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"login":"user","password":"pass"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Authenticate(gomock.Any(), "user", "pass").Return(nil)
				mockUserService.EXPECT().GetUserByLogin(gomock.Any(), "user").Return(&models.User{ID: 1, Login: "user"}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"login":"user","password":"bad"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Authenticate(gomock.Any(), "user", "bad").Return(apperrors.ErrInvalidCredentials)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "inactive user",
			body: `{"login":"user","password":"pass"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Authenticate(gomock.Any(), "user", "pass").Return(apperrors.ErrUserInactive)
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "missing password",
			body:           `{"login":"user"}`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}

func TestHandler_TokenCarriesAdminClaim(t *testing.T) {
	h := &Handler{secretKey: "test"}

	raw, err := h.issueToken(&models.User{ID: 7, IsAdmin: true})
	require.NoError(t, err)

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("test"), nil })
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, true, claims["is_admin"])
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserService := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUserService}

	t.Run("profile without password hash", func(t *testing.T) {
		mockUserService.EXPECT().GetUserByID(gomock.Any(), int64(1)).
			Return(&models.User{ID: 1, Login: "alice", Password: "$2a$10$hash", IsActive: true}, nil)

		w := httptest.NewRecorder()
		h.Me(w, withUser(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), 1, false))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"login":"alice"`)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("user removed", func(t *testing.T) {
		mockUserService.EXPECT().GetUserByID(gomock.Any(), int64(2)).Return(nil, apperrors.ErrUserNotFound)

		w := httptest.NewRecorder()
		h.Me(w, withUser(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), 2, false))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no caller", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
