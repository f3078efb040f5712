package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository/redis"
)

type AudioCacheRepositorySuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	repo      *redis.AudioCacheRepository
}

func (s *AudioCacheRepositorySuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		s.T().Skipf("redis container unavailable: %v", err)
	}
	s.container = container

	endpoint, err := container.Endpoint(ctx, "")
	s.Require().NoError(err)

	repo, err := redis.NewAudioCacheRepository(ctx, "redis://"+endpoint)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *AudioCacheRepositorySuite) TearDownSuite() {
	if s.repo != nil {
		s.Require().NoError(s.repo.Close())
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *AudioCacheRepositorySuite) entry(fp, ref string) models.AudioCacheEntry {
	return models.AudioCacheEntry{
		Fingerprint: fp,
		Text:        "hello",
		Language:    "en-US",
		Voice:       "female-1",
		AudioRef:    ref,
		ContentType: "audio/mpeg",
		SizeBytes:   512,
		CreatedAt:   time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC),
	}
}

func (s *AudioCacheRepositorySuite) TestMiss() {
	got, err := s.repo.Find(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *AudioCacheRepositorySuite) TestInsertAndFind() {
	ctx := context.Background()
	_, err := s.repo.Insert(ctx, s.entry("fp-1", "a.mp3"))
	s.Require().NoError(err)

	got, err := s.repo.Find(ctx, "fp-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("a.mp3", got.AudioRef)
	s.Assert().Equal(int64(512), got.SizeBytes)
	s.Assert().True(got.CreatedAt.Equal(s.entry("", "").CreatedAt))
}

func (s *AudioCacheRepositorySuite) TestFirstInsertWins() {
	ctx := context.Background()
	_, err := s.repo.Insert(ctx, s.entry("fp-2", "first.mp3"))
	s.Require().NoError(err)

	got, err := s.repo.Insert(ctx, s.entry("fp-2", "second.mp3"))
	s.Require().NoError(err)
	s.Assert().Equal("first.mp3", got.AudioRef)
}

func (s *AudioCacheRepositorySuite) TestPing() {
	s.Assert().NoError(s.repo.Ping(context.Background()))
}

func TestAudioCacheRepositorySuite(t *testing.T) {
	suite.Run(t, new(AudioCacheRepositorySuite))
}
