package srs

import (
	"math"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// Quality is an SM-2 recall grade derived from correctness and latency.
type Quality int

const (
	QualityBlackout  Quality = 0
	QualityEffortful Quality = 3
	QualityHesitant  Quality = 4
	QualityConfident Quality = 5
)

const (
	confidentBelowMs = 2000
	hesitantBelowMs  = 4000

	defaultEase = 2.5
	easeStep    = 0.1
	lapseEase   = 0.2

	strengthStep  = 10
	lapseStrength = 20
)

// QualityFor grades an answer. Negative latencies fall into the effortful bucket.
func QualityFor(isCorrect bool, responseTimeMs int64) Quality {
	switch {
	case !isCorrect:
		return QualityBlackout
	case responseTimeMs < 0:
		return QualityEffortful
	case responseTimeMs < confidentBelowMs:
		return QualityConfident
	case responseTimeMs < hesitantBelowMs:
		return QualityHesitant
	default:
		return QualityEffortful
	}
}

// Update applies one answer to the previous state using SM-2.
// prev == nil means the word has never been reviewed.
// Scheduling timestamps are left untouched; see Schedule.
func Update(prev *models.LearningProgress, isCorrect bool, responseTimeMs int64) models.LearningProgress {
	next := models.LearningProgress{EaseFactor: defaultEase}
	if prev != nil {
		next = *prev
	}

	if QualityFor(isCorrect, responseTimeMs) >= QualityEffortful {
		prevInterval := next.IntervalDays
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(prevInterval) * next.EaseFactor))
		}
		next.EaseFactor += easeStep
		next.MemoryStrength += strengthStep
	} else {
		next.Repetitions = 0
		next.IntervalDays = 1
		next.EaseFactor -= lapseEase
		next.MemoryStrength -= lapseStrength
	}

	next.IntervalDays = max(1, next.IntervalDays)
	next.EaseFactor = clampEase(next.EaseFactor)
	next.MemoryStrength = min(models.MaxMemoryStrength, max(models.MinMemoryStrength, next.MemoryStrength))
	return next
}

// Schedule stamps the review time and derives NextReviewAt from the interval.
// Day arithmetic is done in UTC.
func Schedule(p models.LearningProgress, now time.Time) models.LearningProgress {
	reviewed := now.UTC()
	p.LastReviewedAt = &reviewed
	p.NextReviewAt = reviewed.AddDate(0, 0, p.IntervalDays)
	return p
}

// clampEase bounds the factor and rounds to two decimals so repeated
// +0.1/-0.2 steps do not accumulate float drift.
func clampEase(ef float64) float64 {
	ef = math.Round(ef*100) / 100
	return min(models.MaxEaseFactor, max(models.MinEaseFactor, ef))
}
