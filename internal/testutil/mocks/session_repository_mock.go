package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, session models.ReviewSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*models.ReviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewSession), args.Error(1)
}

func (m *MockSessionRepository) AppendAnswer(ctx context.Context, sessionID string, answer models.ReviewAnswer) (models.SessionState, error) {
	args := m.Called(ctx, sessionID, answer)
	return args.Get(0).(models.SessionState), args.Error(1)
}

// Finalize returns the configured session and error. When the configured
// session is not yet completed and there is no error, the compute func is
// applied to it with the configured previous progress (third return value).
func (m *MockSessionRepository) Finalize(ctx context.Context, sessionID string, compute repository.FinalizeFunc) (*models.ReviewSession, error) {
	args := m.Called(ctx, sessionID, compute)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	session := args.Get(0).(*models.ReviewSession)
	if args.Error(1) != nil || session.State == models.SessionCompleted {
		return session, args.Error(1)
	}

	var previous map[int64]models.LearningProgress
	if len(args) > 2 && args.Get(2) != nil {
		previous = args.Get(2).(map[int64]models.LearningProgress)
	}
	plan, err := compute(session, previous)
	if err != nil {
		return nil, err
	}
	done := *session
	done.State = models.SessionCompleted
	done.CorrectAnswers = plan.CorrectAnswers
	done.TotalAnswers = plan.TotalAnswers
	done.DurationSeconds = plan.DurationSeconds
	done.Results = plan.Results
	completedAt := plan.CompletedAt
	done.CompletedAt = &completedAt
	return &done, nil
}

func (m *MockSessionRepository) DeleteAbandoned(ctx context.Context, createdBefore time.Time) (int64, error) {
	args := m.Called(ctx, createdBefore)
	return args.Get(0).(int64), args.Error(1)
}
