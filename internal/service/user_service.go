package service

import (
	"context"
	"slices"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, login, password string) error
	Authenticate(ctx context.Context, login, password string) error
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit uint64) ([]models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type userService struct {
	repo        repository.UserRepository
	adminLogins []string
}

// NewUserService creates users as admins when their login is in adminLogins.
func NewUserService(repo repository.UserRepository, adminLogins []string) UserService {
	return &userService{repo: repo, adminLogins: adminLogins}
}

func (s *userService) Register(ctx context.Context, login, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Login:    login,
		Password: string(hashedPassword),
		IsAdmin:  slices.Contains(s.adminLogins, login),
		IsActive: true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}
	if user.IsAdmin {
		logger.Log.Info("admin user registered", zap.String("login", login))
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, login, password string) error {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return apperrors.ErrUserInactive
	}

	return nil
}

func (s *userService) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.repo.GetUserByLogin(ctx, login)
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, offset, limit uint64) ([]models.User, error) {
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ListUsers(ctx, offset, limit)
}

func (s *userService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
