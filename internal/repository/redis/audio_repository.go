package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

const keyPrefix = "wordflash:audio:"

// AudioCacheRepository shares the audio index between server instances.
type AudioCacheRepository struct {
	rdb *goredis.Client
}

var _ repository.AudioCacheRepository = (*AudioCacheRepository)(nil)

// NewAudioCacheRepository connects to redisURL and verifies the connection.
func NewAudioCacheRepository(ctx context.Context, redisURL string) (*AudioCacheRepository, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &AudioCacheRepository{rdb: rdb}, nil
}

func (r *AudioCacheRepository) Find(ctx context.Context, fingerprint string) (*models.AudioCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("audio_redis")

	data, err := r.rdb.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, goredis.Nil) {
		log.Debug("audio cache miss: fingerprint=%s", fingerprint)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get audio entry: %v", err)
		return nil, err
	}

	var e models.AudioCacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode audio entry %s: %w", fingerprint, err)
	}
	return &e, nil
}

// Insert stores the entry with SETNX so the first writer wins.
func (r *AudioCacheRepository) Insert(ctx context.Context, e models.AudioCacheEntry) (*models.AudioCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("audio_redis")
	log.Debug("inserting audio entry: fingerprint=%s, ref=%s", e.Fingerprint, e.AudioRef)

	e.CreatedAt = e.CreatedAt.UTC()
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	ok, err := r.rdb.SetNX(ctx, keyPrefix+e.Fingerprint, data, 0).Result()
	if err != nil {
		log.Error("failed to insert audio entry: %v", err)
		return nil, err
	}
	if ok {
		return &e, nil
	}

	log.Warn("audio entry already present, keeping existing: fingerprint=%s", e.Fingerprint)
	existing, err := r.Find(ctx, e.Fingerprint)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, repository.ErrNotFound
	}
	return existing, nil
}

// Ping checks connectivity for readiness probes.
func (r *AudioCacheRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *AudioCacheRepository) Close() error {
	return r.rdb.Close()
}
