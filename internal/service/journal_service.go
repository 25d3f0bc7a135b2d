package service

import (
	"context"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/repository"
)

const maxPageSize = 100

type JournalService interface {
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	// Get returns the record when it belongs to userID, or to anyone for admins.
	Get(ctx context.Context, userID int64, isAdmin bool, id int64) (*models.Transaction, error)
}

type journalService struct {
	journal repository.TransactionRepository
}

func NewJournalService(journal repository.TransactionRepository) JournalService {
	return &journalService{journal: journal}
}

func (s *journalService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperrors.ErrInvalidRequest
	}
	if filter.Limit == 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	return s.journal.List(ctx, filter)
}

func (s *journalService) Get(ctx context.Context, userID int64, isAdmin bool, id int64) (*models.Transaction, error) {
	tx, err := s.journal.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && tx.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return tx, nil
}
