package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.ReviewSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, user_id=%d, items=%d", s.ID, s.UserID, len(s.Items))

	wordIDs, err := json.Marshal(s.Scope.WordIDs)
	if err != nil {
		return err
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO review_sessions (id, user_id, scope_tier, scope_word_ids, state, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, s.ID, s.UserID, s.Scope.DifficultyTier, string(wordIDs), s.State, s.CreatedAt.UTC())
		if err != nil {
			log.Error("failed to insert session: %v", err)
			return err
		}
		for pos, wordID := range s.Items {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO session_items (session_id, position, word_id) VALUES (?, ?, ?)
`, s.ID, pos, wordID); err != nil {
				log.Error("failed to insert session item: %v", err)
				return err
			}
		}
		return nil
	})
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.ReviewSession, error) {
	s, err := getSession(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) AppendAnswer(ctx context.Context, sessionID string, a models.ReviewAnswer) (models.SessionState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("appending answer: session_id=%s, word_id=%d, correct=%t", sessionID, a.WordID, a.IsCorrect)

	var state models.SessionState
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT state FROM review_sessions WHERE id = ?`, sessionID).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		if state == models.SessionCompleted {
			return repository.ErrSessionCompleted
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO session_answers (session_id, word_id, is_correct, response_time_ms, recorded_at)
VALUES (?, ?, ?, ?, ?)
`, sessionID, a.WordID, a.IsCorrect, a.ResponseTimeMs, a.RecordedAt.UTC()); err != nil {
			return err
		}

		if state == models.SessionCreated {
			state = models.SessionInProgress
			if _, err := tx.ExecContext(ctx, `UPDATE review_sessions SET state = ? WHERE id = ?`, state, sessionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

func (r *sessionRepository) Finalize(ctx context.Context, sessionID string, compute repository.FinalizeFunc) (*models.ReviewSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("finalizing session: id=%s", sessionID)

	var session *models.ReviewSession
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := getSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		session = s
		if s.State == models.SessionCompleted {
			return repository.ErrSessionCompleted
		}

		answered := make([]int64, 0, len(s.Answers))
		for _, a := range s.FirstAnswers() {
			answered = append(answered, a.WordID)
		}
		previous, err := listProgress(ctx, tx, s.UserID, answered)
		if err != nil {
			return err
		}

		plan, err := compute(s, previous)
		if err != nil {
			return err
		}

		if err := upsertProgress(ctx, tx, s.UserID, plan.Progress); err != nil {
			return err
		}

		completedAt := plan.CompletedAt.UTC()
		res, err := tx.ExecContext(ctx, `
UPDATE review_sessions
SET state = ?, correct_answers = ?, total_answers = ?, duration_seconds = ?, completed_at = ?
WHERE id = ? AND state != ?
`, models.SessionCompleted, plan.CorrectAnswers, plan.TotalAnswers, plan.DurationSeconds, completedAt, sessionID, models.SessionCompleted)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return repository.ErrSessionCompleted
		}

		for _, wr := range plan.Results {
			if _, err := tx.ExecContext(ctx, `
UPDATE session_items SET result_status = ?, result_next_review_at = ?
WHERE session_id = ? AND word_id = ?
`, wr.Status, wr.NextReviewAt.UTC(), sessionID, wr.WordID); err != nil {
				return fmt.Errorf("store result for word %d: %w", wr.WordID, err)
			}
		}

		s.State = models.SessionCompleted
		s.CorrectAnswers = plan.CorrectAnswers
		s.TotalAnswers = plan.TotalAnswers
		s.DurationSeconds = plan.DurationSeconds
		s.CompletedAt = &completedAt
		s.Results = plan.Results
		return nil
	})
	if errors.Is(err, repository.ErrSessionCompleted) {
		log.Debug("session already completed: id=%s", sessionID)
		return session, err
	}
	if err != nil {
		log.Error("failed to finalize session: %v", err)
		return nil, err
	}
	log.Debug("session finalized: id=%s, words=%d", sessionID, len(session.Results))
	return session, nil
}

func (r *sessionRepository) DeleteAbandoned(ctx context.Context, createdBefore time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	res, err := r.db.ExecContext(ctx, `
DELETE FROM review_sessions WHERE state != ? AND created_at < ?
`, models.SessionCompleted, createdBefore.UTC())
	if err != nil {
		log.Error("failed to delete abandoned sessions: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d abandoned sessions created before %s", n, createdBefore.UTC().Format(time.RFC3339))
	return n, nil
}

func getSession(ctx context.Context, q queryer, id string) (*models.ReviewSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var (
		s           models.ReviewSession
		tier        sql.NullInt64
		wordIDs     string
		completedAt sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
SELECT id, user_id, scope_tier, scope_word_ids, state, correct_answers, total_answers, duration_seconds, created_at, completed_at
FROM review_sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.UserID, &tier, &wordIDs, &s.State, &s.CorrectAnswers, &s.TotalAnswers, &s.DurationSeconds, &s.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.Scope.DifficultyTier = nullInt(tier)
	if err := json.Unmarshal([]byte(wordIDs), &s.Scope.WordIDs); err != nil {
		return nil, fmt.Errorf("decode scope of session %s: %w", id, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.CompletedAt = nullTime(completedAt)

	if err := loadSessionItems(ctx, q, &s); err != nil {
		return nil, err
	}
	if err := loadSessionAnswers(ctx, q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func loadSessionItems(ctx context.Context, q queryer, s *models.ReviewSession) error {
	rows, err := q.QueryContext(ctx, `
SELECT word_id, result_status, result_next_review_at
FROM session_items
WHERE session_id = ?
ORDER BY position
`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.Items = []int64{}
	for rows.Next() {
		var (
			wordID int64
			status sql.NullString
			next   sql.NullTime
		)
		if err := rows.Scan(&wordID, &status, &next); err != nil {
			return err
		}
		s.Items = append(s.Items, wordID)
		if status.Valid && next.Valid {
			s.Results = append(s.Results, models.WordResult{
				WordID:       wordID,
				Status:       models.Status(status.String),
				NextReviewAt: next.Time.UTC(),
			})
		}
	}
	return rows.Err()
}

func loadSessionAnswers(ctx context.Context, q queryer, s *models.ReviewSession) error {
	rows, err := q.QueryContext(ctx, `
SELECT word_id, is_correct, response_time_ms, recorded_at
FROM session_answers
WHERE session_id = ?
ORDER BY id
`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.ReviewAnswer
		if err := rows.Scan(&a.WordID, &a.IsCorrect, &a.ResponseTimeMs, &a.RecordedAt); err != nil {
			return err
		}
		a.RecordedAt = a.RecordedAt.UTC()
		s.Answers = append(s.Answers, a)
	}
	return rows.Err()
}
