package services

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// ProgressService handles read-only views of a user's learning state
type ProgressService interface {
	Summary(ctx context.Context, userID int64) (*models.ProgressSummary, error)
	WordProgress(ctx context.Context, userID, wordID int64) (*models.WordProgress, error)
}

type progressService struct {
	progress repository.ProgressRepository
	now      func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(progress repository.ProgressRepository, now func() time.Time) ProgressService {
	if now == nil {
		now = time.Now
	}
	return &progressService{progress: progress, now: now}
}

func (s *progressService) Summary(ctx context.Context, userID int64) (*models.ProgressSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("summarizing progress: user_id=%d", userID)

	if userID <= 0 {
		return nil, errors.NewValidationError("user_id", "must be positive")
	}

	rows, err := s.progress.ListForUser(ctx, userID)
	if err != nil {
		log.Error("failed to list progress: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now().UTC()
	summary := &models.ProgressSummary{UserID: userID, Total: len(rows)}
	for _, p := range rows {
		switch p.Status() {
		case models.StatusLearning:
			summary.Learning++
		case models.StatusReviewing:
			summary.Reviewing++
		case models.StatusMastered:
			summary.Mastered++
		}
		if p.IsDue(now) {
			summary.DueNow++
		}
	}
	return summary, nil
}

func (s *progressService) WordProgress(ctx context.Context, userID, wordID int64) (*models.WordProgress, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": userID, "word_id": wordID})

	if userID <= 0 {
		return nil, errors.NewValidationError("user_id", "must be positive")
	}
	if wordID <= 0 {
		return nil, errors.NewValidationError("word_id", "must be positive")
	}

	p, err := s.progress.Find(ctx, userID, wordID)
	if err != nil {
		log.Error("failed to find progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("progress for word", wordID)
	}

	return &models.WordProgress{
		LearningProgress: *p,
		Status:           p.Status(),
		DueNow:           p.IsDue(s.now().UTC()),
	}, nil
}
