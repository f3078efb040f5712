package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/scheduler"
	"github.com/vytor/wordflash/internal/testutil"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

var now = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func TestSweepAbandonedUsesTTLCutoff(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	sessions.On("DeleteAbandoned", mock.Anything, now.Add(-48*time.Hour)).Return(int64(3), nil)

	s := scheduler.New(sessions, 48*time.Hour, time.Hour)
	s.SetClock(func() time.Time { return now })

	n, err := s.SweepAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	sessions.AssertExpectations(t)
}

func TestSweepAbandonedError(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	sessions.On("DeleteAbandoned", mock.Anything, mock.Anything).Return(int64(0), errors.New("locked"))

	_, err := scheduler.New(sessions, time.Hour, time.Hour).SweepAbandoned(context.Background())
	assert.Error(t, err)
}

func TestSweepKeepsCompletedAndProgress(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	testutil.SeedVocabulary(t, db, testutil.Word(1, nil))

	ctx := context.Background()
	repo := sqlite.NewSessionRepository(db)
	progress := sqlite.NewProgressRepository(db)

	old := now.Add(-72 * time.Hour)
	for _, id := range []string{"stale", "done"} {
		require.NoError(t, repo.Insert(ctx, models.ReviewSession{ID: id, UserID: 7, Items: []int64{1}, State: models.SessionCreated, CreatedAt: old}))
	}
	require.NoError(t, progress.CommitBatch(ctx, 7, []models.LearningProgress{{
		UserID: 7, WordID: 1, Repetitions: 1, IntervalDays: 1, EaseFactor: 2.5, MemoryStrength: 10, NextReviewAt: now,
	}}))
	_, err := repo.Finalize(ctx, "done", func(*models.ReviewSession, map[int64]models.LearningProgress) (repository.FinalizePlan, error) {
		return repository.FinalizePlan{CompletedAt: old}, nil
	})
	require.NoError(t, err)

	s := scheduler.New(repo, 48*time.Hour, time.Hour)
	s.SetClock(func() time.Time { return now })
	n, err := s.SweepAbandoned(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "done")
	assert.NoError(t, err)
	p, err := progress.Find(ctx, 7, 1)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestStartAndStop(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	swept := make(chan struct{}, 1)
	sessions.On("DeleteAbandoned", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), nil)

	s := scheduler.New(sessions, time.Hour, time.Second)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never ran")
	}
}
