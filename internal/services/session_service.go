package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/srs"
)

// SessionService runs the review session lifecycle:
// CREATED -> IN_PROGRESS (first answer) -> COMPLETED (finalize).
type SessionService interface {
	CreateSession(ctx context.Context, userID int64, scope models.Scope, maxBatchSize int) (*models.ReviewSession, error)
	RecordAnswer(ctx context.Context, sessionID string, wordID int64, isCorrect bool, responseTimeMs int64) error
	Finalize(ctx context.Context, sessionID string, correctAnswers, totalAnswers, durationSeconds int) (*models.FinalizeResult, error)
	GetSession(ctx context.Context, sessionID string) (*models.ReviewSession, error)
}

type sessionService struct {
	catalog  repository.CatalogRepository
	progress repository.ProgressRepository
	sessions repository.SessionRepository
	queue    jobs.JobQueue
	voice    string
	now      func() time.Time
	newID    func() string
}

type SessionOption func(*sessionService)

// WithPrefetch warms the audio cache for every created batch using voice.
func WithPrefetch(queue jobs.JobQueue, voice string) SessionOption {
	return func(s *sessionService) {
		s.queue = queue
		s.voice = voice
	}
}

// WithSessionClock overrides the clock used for scheduling.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// WithSessionIDs overrides session ID generation.
func WithSessionIDs(newID func() string) SessionOption {
	return func(s *sessionService) {
		s.newID = newID
	}
}

// NewSessionService creates a new SessionService
func NewSessionService(
	catalog repository.CatalogRepository,
	progress repository.ProgressRepository,
	sessions repository.SessionRepository,
	opts ...SessionOption,
) SessionService {
	s := &sessionService{
		catalog:  catalog,
		progress: progress,
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) CreateSession(ctx context.Context, userID int64, scope models.Scope, maxBatchSize int) (*models.ReviewSession, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Debug("creating session: max_batch_size=%d, explicit=%t", maxBatchSize, scope.IsExplicit())

	if userID <= 0 {
		return nil, errors.NewValidationError("user_id", "must be positive")
	}
	if maxBatchSize <= 0 {
		return nil, errors.NewValidationError("max_batch_size", "must be positive")
	}

	items, err := s.catalog.ListByScope(ctx, scope)
	if err != nil {
		log.Error("failed to list catalog: %v", err)
		return nil, errors.NewInternalError(err)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	progress, err := s.progress.ListForWords(ctx, userID, ids)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now().UTC()
	session := models.ReviewSession{
		ID:        s.newID(),
		UserID:    userID,
		Scope:     scope,
		Items:     srs.SelectBatch(items, progress, now, maxBatchSize),
		State:     models.SessionCreated,
		CreatedAt: now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("session created: id=%s, items=%d of %d in scope", session.ID, len(session.Items), len(items))
	s.prefetch(log, items, session.Items)
	return &session, nil
}

// prefetch warms pronunciations for the batch. It is best effort and
// stops at the first rejected job.
func (s *sessionService) prefetch(log *logger.Logger, items []models.VocabularyItem, batch []int64) {
	if s.queue == nil || len(batch) == 0 {
		return
	}
	byID := make(map[int64]models.VocabularyItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, id := range batch {
		item := byID[id]
		if item.TargetText == "" || item.TargetLanguage == "" {
			continue
		}
		if err := s.queue.EnqueueAudioPrefetch(item.TargetText, item.TargetLanguage, s.voice); err != nil {
			log.Debug("audio prefetch skipped: %v", err)
			return
		}
	}
}

func (s *sessionService) RecordAnswer(ctx context.Context, sessionID string, wordID int64, isCorrect bool, responseTimeMs int64) error {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)
	log.Debug("recording answer: word_id=%d, correct=%t, response_time_ms=%d", wordID, isCorrect, responseTimeMs)

	session, err := s.sessions.Get(ctx, sessionID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewValidationError("session_id", "unknown session")
	}
	if err != nil {
		log.Error("failed to load session: %v", err)
		return errors.NewInternalError(err)
	}
	if session.State == models.SessionCompleted {
		return errors.NewValidationError("session_id", "session already completed")
	}
	if !session.Contains(wordID) {
		return errors.NewValidationError("word_id", "not in this session's batch")
	}

	state, err := s.sessions.AppendAnswer(ctx, sessionID, models.ReviewAnswer{
		WordID:         wordID,
		IsCorrect:      isCorrect,
		ResponseTimeMs: responseTimeMs,
		RecordedAt:     s.now().UTC(),
	})
	switch {
	case stderrors.Is(err, repository.ErrSessionCompleted):
		return errors.NewValidationError("session_id", "session already completed")
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewValidationError("session_id", "unknown session")
	case err != nil:
		log.Error("failed to append answer: %v", err)
		return errors.NewInternalError(err)
	}

	log.Debug("answer recorded: state=%s", state)
	return nil
}

func (s *sessionService) Finalize(ctx context.Context, sessionID string, correctAnswers, totalAnswers, durationSeconds int) (*models.FinalizeResult, error) {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)
	log.Debug("finalizing session: correct=%d, total=%d, duration=%ds", correctAnswers, totalAnswers, durationSeconds)

	if totalAnswers < 0 {
		return nil, errors.NewValidationError("total_answers", "cannot be negative")
	}
	if correctAnswers < 0 || correctAnswers > totalAnswers {
		return nil, errors.NewValidationError("correct_answers", "must be between 0 and total_answers")
	}
	if durationSeconds < 0 {
		return nil, errors.NewValidationError("duration_seconds", "cannot be negative")
	}

	compute := func(session *models.ReviewSession, previous map[int64]models.LearningProgress) (repository.FinalizePlan, error) {
		now := s.now().UTC()
		plan := repository.FinalizePlan{
			CorrectAnswers:  correctAnswers,
			TotalAnswers:    totalAnswers,
			DurationSeconds: durationSeconds,
			CompletedAt:     now,
			Results:         []models.WordResult{},
		}
		for _, a := range session.FirstAnswers() {
			var prev *models.LearningProgress
			if p, ok := previous[a.WordID]; ok {
				prev = &p
			}
			next := srs.Schedule(srs.Update(prev, a.IsCorrect, a.ResponseTimeMs), now)
			next.UserID = session.UserID
			next.WordID = a.WordID

			plan.Progress = append(plan.Progress, next)
			plan.Results = append(plan.Results, models.WordResult{
				WordID:       a.WordID,
				Status:       next.Status(),
				NextReviewAt: next.NextReviewAt,
			})
		}
		return plan, nil
	}

	session, err := s.sessions.Finalize(ctx, sessionID, compute)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.NewNotFoundError("session", sessionID)
	case stderrors.Is(err, repository.ErrSessionCompleted):
		log.Info("session already finalized, returning stored result")
		if session == nil || session.State != models.SessionCompleted {
			if session, err = s.sessions.Get(ctx, sessionID); err != nil {
				log.Error("failed to reload completed session: %v", err)
				return nil, errors.NewInternalError(err)
			}
		}
	case err != nil:
		log.Error("failed to commit session: %v", err)
		return nil, errors.NewUpstreamError("progress store", err)
	default:
		log.Info("session finalized: words=%d, accuracy=%.2f", len(session.Results), models.Accuracy(session.CorrectAnswers, session.TotalAnswers))
	}

	result := session.Result()
	if result.PerWordStates == nil {
		result.PerWordStates = []models.WordResult{}
	}
	return &result, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*models.ReviewSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to load session %s: %v", sessionID, err)
		return nil, errors.NewInternalError(err)
	}
	return session, nil
}
