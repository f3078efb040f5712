package jobs

import (
	"github.com/vytor/wordflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	prefetchPool *worker.Pool
	resolver     worker.AudioResolver
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(prefetchPool *worker.Pool, resolver worker.AudioResolver) JobQueue {
	return &WorkerQueue{
		prefetchPool: prefetchPool,
		resolver:     resolver,
	}
}

func (q *WorkerQueue) EnqueueAudioPrefetch(text, language, voice string) error {
	return q.prefetchPool.TrySubmit(&worker.PrefetchAudioJob{
		Resolver: q.resolver,
		Text:     text,
		Language: language,
		Voice:    voice,
	})
}
