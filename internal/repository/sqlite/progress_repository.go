package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

var progressColumns = []string{
	"user_id", "word_id", "repetitions", "interval_days", "ease_factor", "memory_strength", "next_review_at", "last_reviewed_at",
}

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Find(ctx context.Context, userID, wordID int64) (*models.LearningProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("finding progress: user_id=%d, word_id=%d", userID, wordID)

	stmt, args, err := sqlBuilder.Select(progressColumns...).From("learning_progress").
		Where(squirrel.Eq{"user_id": userID, "word_id": wordID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProgress(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no progress yet: user_id=%d, word_id=%d", userID, wordID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) ListForWords(ctx context.Context, userID int64, wordIDs []int64) (map[int64]models.LearningProgress, error) {
	return listProgress(ctx, r.db, userID, wordIDs)
}

func (r *progressRepository) ListForUser(ctx context.Context, userID int64) ([]models.LearningProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing progress: user_id=%d", userID)

	stmt, args, err := sqlBuilder.Select(progressColumns...).From("learning_progress").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("next_review_at", "word_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.LearningProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress row: %v", err)
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *progressRepository) CommitBatch(ctx context.Context, userID int64, rows []models.LearningProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("committing progress batch: user_id=%d, rows=%d", userID, len(rows))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertProgress(ctx, tx, userID, rows)
	})
}

func listProgress(ctx context.Context, q queryer, userID int64, wordIDs []int64) (map[int64]models.LearningProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	out := make(map[int64]models.LearningProgress, len(wordIDs))
	if len(wordIDs) == 0 {
		return out, nil
	}

	stmt, args, err := sqlBuilder.Select(progressColumns...).From("learning_progress").
		Where(squirrel.Eq{"user_id": userID, "word_id": wordIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list progress for words: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress row: %v", err)
			return nil, err
		}
		out[p.WordID] = p
	}
	log.Debug("loaded progress for %d of %d words", len(out), len(wordIDs))
	return out, rows.Err()
}

func upsertProgress(ctx context.Context, q queryer, userID int64, rows []models.LearningProgress) error {
	for _, p := range rows {
		if p.UserID != userID {
			return fmt.Errorf("progress row for user %d in batch for user %d", p.UserID, userID)
		}
		var lastReviewed any
		if p.LastReviewedAt != nil {
			lastReviewed = p.LastReviewedAt.UTC()
		}
		_, err := q.ExecContext(ctx, `
INSERT INTO learning_progress (user_id, word_id, repetitions, interval_days, ease_factor, memory_strength, next_review_at, last_reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, word_id) DO UPDATE SET
    repetitions = excluded.repetitions,
    interval_days = excluded.interval_days,
    ease_factor = excluded.ease_factor,
    memory_strength = excluded.memory_strength,
    next_review_at = excluded.next_review_at,
    last_reviewed_at = excluded.last_reviewed_at,
    updated_at = CURRENT_TIMESTAMP
`, p.UserID, p.WordID, p.Repetitions, p.IntervalDays, p.EaseFactor, p.MemoryStrength, p.NextReviewAt.UTC(), lastReviewed)
		if err != nil {
			return fmt.Errorf("upsert progress word %d: %w", p.WordID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (models.LearningProgress, error) {
	var (
		p            models.LearningProgress
		lastReviewed sql.NullTime
	)
	err := row.Scan(&p.UserID, &p.WordID, &p.Repetitions, &p.IntervalDays, &p.EaseFactor, &p.MemoryStrength, &p.NextReviewAt, &lastReviewed)
	if err != nil {
		return p, err
	}
	p.NextReviewAt = p.NextReviewAt.UTC()
	p.LastReviewedAt = nullTime(lastReviewed)
	return p, nil
}
