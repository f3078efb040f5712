package srs

import (
	"sort"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// SelectBatch picks the words for the next session.
//
// Due words come first, most overdue first with weaker memory breaking ties.
// Remaining slots are filled with never-reviewed words in catalog order.
// Words scheduled after now are skipped. A non-positive maxSize yields nil.
func SelectBatch(items []models.VocabularyItem, progress map[int64]models.LearningProgress, now time.Time, maxSize int) []int64 {
	if maxSize <= 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(items))
	var due []models.LearningProgress
	var fresh []int64
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		p, ok := progress[item.ID]
		switch {
		case !ok:
			fresh = append(fresh, item.ID)
		case p.IsDue(now):
			p.WordID = item.ID
			due = append(due, p)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].MemoryStrength < due[j].MemoryStrength
	})

	batch := make([]int64, 0, min(maxSize, len(due)+len(fresh)))
	for _, p := range due {
		if len(batch) == maxSize {
			return batch
		}
		batch = append(batch, p.WordID)
	}
	for _, id := range fresh {
		if len(batch) == maxSize {
			break
		}
		batch = append(batch, id)
	}
	return batch
}
