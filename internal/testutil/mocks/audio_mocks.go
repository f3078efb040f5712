package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/audio"
	"github.com/vytor/wordflash/internal/models"
)

// MockAudioCacheRepository is a mock implementation of repository.AudioCacheRepository
type MockAudioCacheRepository struct {
	mock.Mock
}

func (m *MockAudioCacheRepository) Find(ctx context.Context, fingerprint string) (*models.AudioCacheEntry, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AudioCacheEntry), args.Error(1)
}

func (m *MockAudioCacheRepository) Insert(ctx context.Context, entry models.AudioCacheEntry) (*models.AudioCacheEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AudioCacheEntry), args.Error(1)
}

// MockSynthesizer is a mock implementation of audio.Synthesizer
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text, language, voice string) (audio.Clip, error) {
	args := m.Called(ctx, text, language, voice)
	return args.Get(0).(audio.Clip), args.Error(1)
}

// MockBlobStore is a mock implementation of audio.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

// MockAudioResolver is a mock implementation of the resolver used by jobs and handlers
type MockAudioResolver struct {
	mock.Mock
}

func (m *MockAudioResolver) Resolve(ctx context.Context, text, language, voice string) (*models.AudioCacheEntry, error) {
	args := m.Called(ctx, text, language, voice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AudioCacheEntry), args.Error(1)
}
