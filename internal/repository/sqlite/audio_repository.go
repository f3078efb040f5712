package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type audioCacheRepository struct {
	db *sql.DB
}

// NewAudioCacheRepository creates a new AudioCacheRepository implementation
func NewAudioCacheRepository(db *sql.DB) repository.AudioCacheRepository {
	return &audioCacheRepository{db: db}
}

func (r *audioCacheRepository) Find(ctx context.Context, fingerprint string) (*models.AudioCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("audio_repo")

	var e models.AudioCacheEntry
	err := r.db.QueryRowContext(ctx, `
SELECT fingerprint, text, language, voice, audio_ref, content_type, size_bytes, created_at
FROM audio_cache_entries
WHERE fingerprint = ?
`, fingerprint).Scan(&e.Fingerprint, &e.Text, &e.Language, &e.Voice, &e.AudioRef, &e.ContentType, &e.SizeBytes, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("audio cache miss: fingerprint=%s", fingerprint)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get audio entry: %v", err)
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (r *audioCacheRepository) Insert(ctx context.Context, e models.AudioCacheEntry) (*models.AudioCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("audio_repo")
	log.Debug("inserting audio entry: fingerprint=%s, ref=%s", e.Fingerprint, e.AudioRef)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO audio_cache_entries (fingerprint, text, language, voice, audio_ref, content_type, size_bytes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (fingerprint) DO NOTHING
`, e.Fingerprint, e.Text, e.Language, e.Voice, e.AudioRef, e.ContentType, e.SizeBytes, e.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to insert audio entry: %v", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		e.CreatedAt = e.CreatedAt.UTC()
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
