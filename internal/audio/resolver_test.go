package audio_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/audio"
	apperrors "github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/testutil"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

// gatedSynth counts calls per text and blocks each call until released.
type gatedSynth struct {
	mu      sync.Mutex
	calls   map[string]int
	release chan struct{}
	fail    atomic.Bool
}

func newGatedSynth() *gatedSynth {
	return &gatedSynth{calls: map[string]int{}, release: make(chan struct{})}
}

func (g *gatedSynth) Synthesize(ctx context.Context, text, language, voice string) (audio.Clip, error) {
	g.mu.Lock()
	g.calls[text]++
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-ctx.Done():
		return audio.Clip{}, ctx.Err()
	}
	if g.fail.Load() {
		return audio.Clip{}, errors.New("tts unavailable")
	}
	return audio.Clip{Data: []byte("audio:" + text), ContentType: "audio/mpeg"}, nil
}

func (g *gatedSynth) count(text string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[text]
}

type ResolverSuite struct {
	suite.Suite
	db    *sql.DB
	synth *gatedSynth
	store *audio.FileStore
	r     *audio.Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.synth = newGatedSynth()

	store, err := audio.NewFileStore(s.T().TempDir())
	s.Require().NoError(err)
	s.store = store

	s.r = audio.NewResolver(sqlite.NewAudioCacheRepository(s.db), s.synth, s.store,
		audio.WithGenerationTimeout(5*time.Second))
}

func (s *ResolverSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ResolverSuite) resolveConcurrently(n int, text string) ([]*models.AudioCacheEntry, []error) {
	entries := make([]*models.AudioCacheEntry, n)
	errs := make([]error, n)

	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			entries[i], errs[i] = s.r.Resolve(context.Background(), text, "en-US", "female-1")
		}(i)
	}
	started.Wait()
	// Give every goroutine time to reach the flight before releasing it.
	s.Eventually(func() bool { return s.synth.count(audio.Normalize(text, "", "").Text) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(s.synth.release)
	done.Wait()
	return entries, errs
}

func (s *ResolverSuite) TestConcurrentColdResolvesGenerateOnce() {
	entries, errs := s.resolveConcurrently(10, "Hello")

	for i := range entries {
		s.Require().NoError(errs[i])
		s.Require().NotNil(entries[i])
		s.Assert().Equal(entries[0].AudioRef, entries[i].AudioRef)
	}
	s.Assert().Equal(1, s.synth.count("hello"))

	again, err := s.r.Resolve(context.Background(), "  HELLO ", "en-US", "female-1")
	s.Require().NoError(err)
	s.Assert().Equal(entries[0].AudioRef, again.AudioRef)
	s.Assert().Equal(1, s.synth.count("hello"), "warm cache does not synthesize")
}

func (s *ResolverSuite) TestFailurePropagatesAndNothingPersists() {
	s.synth.fail.Store(true)

	entries, errs := s.resolveConcurrently(4, "Hello")
	for i := range errs {
		s.Assert().Nil(entries[i])
		s.Require().Error(errs[i])
		appErr := apperrors.From(errs[i])
		s.Assert().Equal(apperrors.ErrCodeUpstream, appErr.Code)
		s.Assert().True(appErr.Retryable())
	}
	s.Assert().Equal(1, s.synth.count("hello"))

	var n int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM audio_cache_entries`).Scan(&n))
	s.Assert().Zero(n)

	// The fingerprint is free again: a retry generates from scratch.
	s.synth.fail.Store(false)
	entry, err := s.r.Resolve(context.Background(), "Hello", "en-US", "female-1")
	s.Require().NoError(err)
	s.Assert().NotEmpty(entry.AudioRef)
	s.Assert().Equal(2, s.synth.count("hello"))
}

func (s *ResolverSuite) TestDifferentFingerprintsDoNotBlockEachOther() {
	blocked := make(chan struct{})
	slow := &blockingSynth{unblock: blocked}
	r := audio.NewResolver(sqlite.NewAudioCacheRepository(s.db), slow, s.store)

	go func() {
		_, _ = r.Resolve(context.Background(), "slow", "en-US", "female-1")
	}()
	s.Eventually(func() bool { return slow.started.Load() }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entry, err := r.Resolve(ctx, "fast", "en-US", "female-1")
	s.Require().NoError(err)
	s.Assert().Equal("fast", entry.Text)
	close(blocked)
}

func (s *ResolverSuite) TestCallerCancellationDoesNotAbortFlight() {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.r.Resolve(ctx, "patience", "en-US", "female-1")
		errc <- err
	}()
	s.Eventually(func() bool { return s.synth.count("patience") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Assert().ErrorIs(<-errc, context.Canceled)

	close(s.synth.release)
	s.Eventually(func() bool {
		var n int
		_ = s.db.QueryRow(`SELECT COUNT(*) FROM audio_cache_entries`).Scan(&n)
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

type blockingSynth struct {
	started atomic.Bool
	unblock chan struct{}
}

func (b *blockingSynth) Synthesize(ctx context.Context, text, language, voice string) (audio.Clip, error) {
	if text == "slow" {
		b.started.Store(true)
		<-b.unblock
	}
	return audio.Clip{Data: []byte(text), ContentType: "audio/ogg"}, nil
}

func TestResolveValidation(t *testing.T) {
	r := audio.NewResolver(new(mocks.MockAudioCacheRepository), new(mocks.MockSynthesizer), new(mocks.MockBlobStore))

	tests := []struct {
		text, language, voice, field string
	}{
		{"   ", "en-US", "female-1", "text"},
		{"hi", "", "female-1", "language"},
		{"hi", "en-US", " ", "voice"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.text, tt.language, tt.voice)
			require.Error(t, err)
			appErr := apperrors.From(err)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
			assert.Contains(t, appErr.Message, tt.field)
		})
	}
}

func TestResolveCacheHitSkipsGeneration(t *testing.T) {
	index := new(mocks.MockAudioCacheRepository)
	synth := new(mocks.MockSynthesizer)
	blobs := new(mocks.MockBlobStore)

	key := audio.Normalize("Hello", "en-US", "female-1").Key()
	cached := &models.AudioCacheEntry{Fingerprint: key, AudioRef: "cached.mp3"}
	index.On("Find", mock.Anything, key).Return(cached, nil)

	r := audio.NewResolver(index, synth, blobs)
	got, err := r.Resolve(context.Background(), "Hello", "en-US", "female-1")

	require.NoError(t, err)
	assert.Same(t, cached, got)
	synth.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveStoreFailureIndexesNothing(t *testing.T) {
	index := new(mocks.MockAudioCacheRepository)
	synth := new(mocks.MockSynthesizer)
	blobs := new(mocks.MockBlobStore)

	index.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
	synth.On("Synthesize", mock.Anything, "hello", "en-US", "female-1").
		Return(audio.Clip{Data: []byte("x"), ContentType: "audio/mpeg"}, nil)
	blobs.On("Put", mock.Anything, []byte("x"), "audio/mpeg").Return("", fmt.Errorf("disk full"))

	r := audio.NewResolver(index, synth, blobs)
	_, err := r.Resolve(context.Background(), "Hello", "en-US", "female-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.From(err).Code)
	index.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestResolveIndexFailureIsRetryable(t *testing.T) {
	index := new(mocks.MockAudioCacheRepository)
	synth := new(mocks.MockSynthesizer)
	blobs := new(mocks.MockBlobStore)
	index.On("Find", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("index unreachable"))

	r := audio.NewResolver(index, synth, blobs)
	_, err := r.Resolve(context.Background(), "Hello", "en-US", "female-1")

	require.Error(t, err)
	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrCodeUpstream, appErr.Code)
	assert.True(t, appErr.Retryable())
	synth.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveRecheckFailureIsRetryable(t *testing.T) {
	index := new(mocks.MockAudioCacheRepository)
	synth := new(mocks.MockSynthesizer)
	blobs := new(mocks.MockBlobStore)
	index.On("Find", mock.Anything, mock.Anything).Return(nil, nil).Once()
	index.On("Find", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("index unreachable")).Once()

	r := audio.NewResolver(index, synth, blobs)
	_, err := r.Resolve(context.Background(), "Hello", "en-US", "female-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.From(err).Code)
	synth.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	index.AssertExpectations(t)
}

func TestResolveUsesFixedClock(t *testing.T) {
	index := new(mocks.MockAudioCacheRepository)
	synth := new(mocks.MockSynthesizer)
	blobs := new(mocks.MockBlobStore)
	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

	index.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
	synth.On("Synthesize", mock.Anything, "hola", "es-ES", "male-2").
		Return(audio.Clip{Data: []byte("abc"), ContentType: "audio/ogg"}, nil)
	blobs.On("Put", mock.Anything, []byte("abc"), "audio/ogg").Return("1.ogg", nil)
	index.On("Insert", mock.Anything, mock.MatchedBy(func(e models.AudioCacheEntry) bool {
		return e.AudioRef == "1.ogg" && e.SizeBytes == 3 && e.CreatedAt.Equal(now) && e.Text == "hola"
	})).Return(&models.AudioCacheEntry{AudioRef: "1.ogg"}, nil)

	r := audio.NewResolver(index, synth, blobs, audio.WithClock(func() time.Time { return now }))
	got, err := r.Resolve(context.Background(), "Hola", "es-ES", "male-2")

	require.NoError(t, err)
	assert.Equal(t, "1.ogg", got.AudioRef)
	index.AssertExpectations(t)
}
