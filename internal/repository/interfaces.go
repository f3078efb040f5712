package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

var (
	// ErrNotFound is returned when a required row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionCompleted is returned when a session can no longer be mutated.
	ErrSessionCompleted = errors.New("session already completed")
)

// CatalogRepository reads the vocabulary catalog. The core never writes it.
type CatalogRepository interface {
	ListByScope(ctx context.Context, scope models.Scope) ([]models.VocabularyItem, error)
}

// ProgressRepository handles per-user learning state.
type ProgressRepository interface {
	// Find returns nil, nil when the user has never reviewed the word.
	Find(ctx context.Context, userID, wordID int64) (*models.LearningProgress, error)
	ListForWords(ctx context.Context, userID int64, wordIDs []int64) (map[int64]models.LearningProgress, error)
	ListForUser(ctx context.Context, userID int64) ([]models.LearningProgress, error)
	// CommitBatch upserts all rows in one transaction.
	CommitBatch(ctx context.Context, userID int64, rows []models.LearningProgress) error
}

// FinalizePlan is what a finalize commits alongside the session's completion.
type FinalizePlan struct {
	Progress        []models.LearningProgress
	Results         []models.WordResult
	CorrectAnswers  int
	TotalAnswers    int
	DurationSeconds int
	CompletedAt     time.Time
}

// FinalizeFunc computes the plan from the session and the current progress of
// its answered words. It runs inside the finalize transaction and must not block.
type FinalizeFunc func(session *models.ReviewSession, previous map[int64]models.LearningProgress) (FinalizePlan, error)

// SessionRepository handles review session persistence.
type SessionRepository interface {
	Insert(ctx context.Context, session models.ReviewSession) error
	Get(ctx context.Context, id string) (*models.ReviewSession, error)
	// AppendAnswer records an answer and moves CREATED sessions to IN_PROGRESS.
	AppendAnswer(ctx context.Context, sessionID string, answer models.ReviewAnswer) (models.SessionState, error)
	// Finalize atomically commits the plan and completes the session.
	// Returns ErrSessionCompleted when another finalize already won.
	Finalize(ctx context.Context, sessionID string, compute FinalizeFunc) (*models.ReviewSession, error)
	DeleteAbandoned(ctx context.Context, createdBefore time.Time) (int64, error)
}

// AudioCacheRepository indexes synthesized audio by fingerprint.
type AudioCacheRepository interface {
	// Find returns nil, nil on a cache miss.
	Find(ctx context.Context, fingerprint string) (*models.AudioCacheEntry, error)
	// Insert stores the entry unless one exists, and returns whichever entry won.
	Insert(ctx context.Context, entry models.AudioCacheEntry) (*models.AudioCacheEntry, error)
}
