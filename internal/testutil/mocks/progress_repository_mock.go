package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Find(ctx context.Context, userID, wordID int64) (*models.LearningProgress, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearningProgress), args.Error(1)
}

func (m *MockProgressRepository) ListForWords(ctx context.Context, userID int64, wordIDs []int64) (map[int64]models.LearningProgress, error) {
	args := m.Called(ctx, userID, wordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.LearningProgress), args.Error(1)
}

func (m *MockProgressRepository) ListForUser(ctx context.Context, userID int64) ([]models.LearningProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LearningProgress), args.Error(1)
}

func (m *MockProgressRepository) CommitBatch(ctx context.Context, userID int64, rows []models.LearningProgress) error {
	args := m.Called(ctx, userID, rows)
	return args.Error(0)
}
