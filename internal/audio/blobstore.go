package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/wordflash/internal/logger"
)

var extensions = map[string]string{
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/ogg":   ".ogg",
	"audio/webm":  ".webm",
}

// FileStore keeps audio blobs as files under one directory.
// The returned reference is the file name relative to that directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("audio_store")

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty audio")
	}

	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		ext = ".bin"
	}
	ref := uuid.NewString() + ext

	// Write to a temp file first so a reader never sees a partial blob.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, ref)); err != nil {
		log.Error("failed to store audio blob: %v", err)
		return "", err
	}

	log.Debug("stored audio blob: ref=%s, bytes=%d", ref, len(data))
	return ref, nil
}

// Dir returns the directory blobs are written to.
func (s *FileStore) Dir() string {
	return s.dir
}
