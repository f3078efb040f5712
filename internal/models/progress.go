package models

import "time"

// Status is derived from a LearningProgress row and is never stored.
type Status string

const (
	StatusLearning  Status = "LEARNING"
	StatusReviewing Status = "REVIEWING"
	StatusMastered  Status = "MASTERED"
)

const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	MinMemoryStrength = 0
	MaxMemoryStrength = 100

	masteryStrength    = 80
	masteryRepetitions = 5
)

// LearningProgress is the scheduling state of one word for one user.
type LearningProgress struct {
	UserID         int64      `json:"user_id"`
	WordID         int64      `json:"word_id"`
	Repetitions    int        `json:"repetitions"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	MemoryStrength int        `json:"memory_strength"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

// DeriveStatus maps (repetitions, memory strength) to a status.
func DeriveStatus(repetitions, memoryStrength int) Status {
	switch {
	case repetitions == 0:
		return StatusLearning
	case memoryStrength >= masteryStrength && repetitions >= masteryRepetitions:
		return StatusMastered
	default:
		return StatusReviewing
	}
}

func (p LearningProgress) Status() Status {
	return DeriveStatus(p.Repetitions, p.MemoryStrength)
}

// IsDue reports whether the word should be reviewed at now.
func (p LearningProgress) IsDue(now time.Time) bool {
	return !now.Before(p.NextReviewAt)
}

// WordProgress is one word's progress with its derived status.
type WordProgress struct {
	LearningProgress
	Status Status `json:"status"`
	DueNow bool   `json:"due_now"`
}

// ProgressSummary aggregates a user's progress by derived status.
type ProgressSummary struct {
	UserID    int64 `json:"user_id"`
	Learning  int   `json:"learning"`
	Reviewing int   `json:"reviewing"`
	Mastered  int   `json:"mastered"`
	DueNow    int   `json:"due_now"`
	Total     int   `json:"total"`
}
