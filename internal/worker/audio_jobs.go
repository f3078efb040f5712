package worker

import (
	"context"

	"github.com/vytor/wordflash/internal/models"
)

// AudioResolver defines the interface for warming the audio cache.
// This avoids import cycles by not importing the audio package
type AudioResolver interface {
	Resolve(ctx context.Context, text, language, voice string) (*models.AudioCacheEntry, error)
}

// PrefetchAudioJob resolves one pronunciation so a later request is a cache hit.
type PrefetchAudioJob struct {
	Resolver AudioResolver
	Text     string
	Language string
	Voice    string
}

func (j *PrefetchAudioJob) Name() string { return "prefetch_audio" }

func (j *PrefetchAudioJob) Run(ctx context.Context) error {
	_, err := j.Resolver.Resolve(ctx, j.Text, j.Language, j.Voice)
	return err
}
