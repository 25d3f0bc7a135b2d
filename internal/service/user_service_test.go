package service

import (
	"context"
	"errors"
	"testing"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/mocks/repository_mocks"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/golang/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name        string
		login       string
		password    string
		mockSetup   func(m *repository_mocks.MockUserRepository)
		expectedErr error
	}{
		{
			name:     "успешная регистрация",
			login:    "user1",
			password: "password123",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:     "пользователь уже существует",
			login:    "user2",
			password: "password123",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(apperrors.ErrUserAlreadyExists)
			},
			expectedErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "неизвестная ошибка создания",
			login:    "user3",
			password: "password123",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(errors.New("db fail"))
			},
			expectedErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := repository_mocks.NewMockUserRepository(ctrl)
			tt.mockSetup(repo)

			service := NewUserService(repo, nil)
			err := service.Register(context.Background(), tt.login, tt.password)

			if tt.expectedErr != nil && err.Error() != tt.expectedErr.Error() {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr == nil && err != nil {
				t.Errorf("expected nil error, got %v", err)
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	tests := []struct {
		name        string
		login       string
		password    string
		mockUser    *models.User
		mockErr     error
		expectedErr error
	}{
		{
			name:     "успешная аутентификация",
			login:    "user1",
			password: "password123",
			mockUser: &models.User{Login: "user1", Password: string(hashed), IsActive: true},
		},
		{
			name:        "пользователь заблокирован",
			login:       "user4",
			password:    "password123",
			mockUser:    &models.User{Login: "user4", Password: string(hashed)},
			expectedErr: apperrors.ErrUserInactive,
		},
		{
			name:        "неправильный пароль",
			login:       "user2",
			password:    "wrongpass",
			mockUser:    &models.User{Login: "user2", Password: string(hashed), IsActive: true},
			expectedErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:        "пользователь не найден",
			login:       "user3",
			password:    "any",
			mockErr:     errors.New("not found"),
			expectedErr: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := repository_mocks.NewMockUserRepository(ctrl)
			repo.EXPECT().GetUserByLogin(gomock.Any(), tt.login).Return(tt.mockUser, tt.mockErr)

			service := NewUserService(repo, nil)
			err := service.Authenticate(context.Background(), tt.login, tt.password)

			if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr == nil && err != nil {
				t.Errorf("expected nil error, got %v", err)
			}
		})
	}
}

func TestUserService_GetUserByLogin(t *testing.T) {
	expectedUser := &models.User{Login: "user1", Password: "hashed"}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repository_mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().GetUserByLogin(gomock.Any(), "user1").Return(expectedUser, nil)

	service := NewUserService(repo, nil)

	user, err := service.GetUserByLogin(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Login != expectedUser.Login {
		t.Errorf("expected login %s, got %s", expectedUser.Login, user.Login)
	}
}

func TestUserService_RegisterAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var created []*models.User
	repo := repository_mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
		created = append(created, u)
		return nil
	}).Times(2)

	service := NewUserService(repo, []string{"root"})
	if err := service.Register(context.Background(), "root", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Register(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created[0].IsAdmin || !created[0].IsActive {
		t.Errorf("root must be an active admin, got %+v", created[0])
	}
	if created[1].IsAdmin {
		t.Errorf("alice must not be an admin")
	}
	if created[1].Password == "password123" {
		t.Errorf("password must be stored hashed")
	}
}

func TestUserService_ListUsersCapsPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repository_mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().ListUsers(gomock.Any(), uint64(0), uint64(maxPageSize)).Return(nil, nil)
	repo.EXPECT().SetActive(gomock.Any(), int64(3), false).Return(apperrors.ErrUserNotFound)

	service := NewUserService(repo, nil)
	if _, err := service.ListUsers(context.Background(), 0, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.SetActive(context.Background(), 3, false); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected %v, got %v", apperrors.ErrUserNotFound, err)
	}
}
