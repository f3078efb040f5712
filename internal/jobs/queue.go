package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueAudioPrefetch schedules a best-effort audio cache warm-up.
	// It never blocks; a full queue is reported as an error.
	EnqueueAudioPrefetch(text, language, voice string) error
}
