package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/testutil"
)

type AudioCacheRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.AudioCacheRepository
}

func (s *AudioCacheRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewAudioCacheRepository(s.db)
}

func (s *AudioCacheRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func entry(fp, ref string) models.AudioCacheEntry {
	return models.AudioCacheEntry{
		Fingerprint: fp,
		Text:        "hello",
		Language:    "en-US",
		Voice:       "female-1",
		AudioRef:    ref,
		ContentType: "audio/mpeg",
		SizeBytes:   1024,
		CreatedAt:   time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC),
	}
}

func (s *AudioCacheRepositorySuite) TestMiss() {
	got, err := s.repo.Find(context.Background(), "abc")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *AudioCacheRepositorySuite) TestInsertThenFind() {
	ctx := context.Background()
	stored, err := s.repo.Insert(ctx, entry("abc", "audio/1.mp3"))
	s.Require().NoError(err)
	s.Assert().Equal("audio/1.mp3", stored.AudioRef)

	got, err := s.repo.Find(ctx, "abc")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("audio/1.mp3", got.AudioRef)
	s.Assert().Equal("female-1", got.Voice)
	s.Assert().Equal(int64(1024), got.SizeBytes)
	s.Assert().True(got.CreatedAt.Equal(entry("abc", "").CreatedAt))
}

func (s *AudioCacheRepositorySuite) TestFirstInsertWins() {
	ctx := context.Background()
	_, err := s.repo.Insert(ctx, entry("abc", "audio/1.mp3"))
	s.Require().NoError(err)

	second, err := s.repo.Insert(ctx, entry("abc", "audio/2.mp3"))
	s.Require().NoError(err)
	s.Assert().Equal("audio/1.mp3", second.AudioRef)
}

func TestAudioCacheRepositorySuite(t *testing.T) {
	suite.Run(t, new(AudioCacheRepositorySuite))
}
