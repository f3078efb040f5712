package audio

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// Clip is a synthesized recording.
type Clip struct {
	Data        []byte
	ContentType string
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, voice string) (Clip, error)
}

// BlobStore persists audio bytes and returns a reference to them.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// Resolver returns cached pronunciations and generates missing ones,
// with at most one generation in flight per fingerprint.
type Resolver struct {
	index   repository.AudioCacheRepository
	synth   Synthesizer
	blobs   BlobStore
	timeout time.Duration
	now     func() time.Time

	flights singleflight.Group
}

type ResolverOption func(*Resolver)

// WithGenerationTimeout bounds a single synthesize-and-store run.
func WithGenerationTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

func NewResolver(index repository.AudioCacheRepository, synth Synthesizer, blobs BlobStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		index:   index,
		synth:   synth,
		blobs:   blobs,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cache entry for (text, language, voice), generating it on a miss.
// Callers that arrive while a generation for the same fingerprint is running wait for it
// and share its result or its error. A failed generation persists nothing.
func (r *Resolver) Resolve(ctx context.Context, text, language, voice string) (*models.AudioCacheEntry, error) {
	fp := Normalize(text, language, voice)
	if fp.Text == "" {
		return nil, errors.NewValidationError("text", "cannot be empty")
	}
	if fp.Language == "" {
		return nil, errors.NewValidationError("language", "cannot be empty")
	}
	if fp.Voice == "" {
		return nil, errors.NewValidationError("voice", "cannot be empty")
	}

	key := fp.Key()
	log := logger.FromContext(ctx).WithPrefix("audio_resolver").WithField("fingerprint", key[:12])

	entry, err := r.index.Find(ctx, key)
	if err != nil {
		log.Error("failed to look up audio entry: %v", err)
		return nil, errors.NewUpstreamError("audio index", err)
	}
	if entry != nil {
		log.Debug("audio cache hit")
		return entry, nil
	}

	// The flight outlives any single caller: a waiter giving up must not
	// abort the generation the other waiters depend on.
	flightCtx := logger.NewContext(context.WithoutCancel(ctx), log)
	ch := r.flights.DoChan(key, func() (any, error) {
		return r.generate(flightCtx, key, fp)
	})

	select {
	case <-ctx.Done():
		log.Debug("caller stopped waiting for audio generation: %v", ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug("joined in-flight audio generation")
		}
		return res.Val.(*models.AudioCacheEntry), nil
	}
}

func (r *Resolver) generate(ctx context.Context, key string, fp Fingerprint) (*models.AudioCacheEntry, error) {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// A flight that finished between our lookup and DoChan has already persisted.
	if entry, err := r.index.Find(ctx, key); err != nil {
		log.Error("failed to re-check audio entry: %v", err)
		return nil, errors.NewUpstreamError("audio index", err)
	} else if entry != nil {
		return entry, nil
	}

	start := time.Now()
	clip, err := r.synth.Synthesize(ctx, fp.Text, fp.Language, fp.Voice)
	if err != nil {
		log.Error("speech synthesis failed after %v: %v", time.Since(start), err)
		return nil, errors.NewUpstreamError("speech synthesis", err)
	}
	log.Debug("synthesized %d bytes in %v", len(clip.Data), time.Since(start))

	ref, err := r.blobs.Put(ctx, clip.Data, clip.ContentType)
	if err != nil {
		log.Error("failed to store audio: %v", err)
		return nil, errors.NewUpstreamError("audio storage", err)
	}

	stored, err := r.index.Insert(ctx, models.AudioCacheEntry{
		Fingerprint: key,
		Text:        fp.Text,
		Language:    fp.Language,
		Voice:       fp.Voice,
		AudioRef:    ref,
		ContentType: clip.ContentType,
		SizeBytes:   int64(len(clip.Data)),
		CreatedAt:   r.now().UTC(),
	})
	if err != nil {
		log.Error("failed to index audio entry: %v", err)
		return nil, errors.NewUpstreamError("audio index", err)
	}

	log.Info("generated audio: ref=%s", stored.AudioRef)
	return stored, nil
}
