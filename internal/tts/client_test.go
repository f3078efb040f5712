package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/tts"
)

func TestSynthesize(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "audio/ogg; codecs=opus")
		_, _ = w.Write([]byte("OggS-data"))
	}))
	defer srv.Close()

	c := tts.New(srv.URL, "secret", time.Second)
	clip, err := c.Synthesize(context.Background(), "hello", "en-US", "female-1")

	require.NoError(t, err)
	assert.Equal(t, "OggS-data", string(clip.Data))
	assert.Equal(t, "audio/ogg", clip.ContentType)
	assert.Equal(t, map[string]string{"text": "hello", "language": "en-US", "voice": "female-1"}, got)
}

func TestSynthesizeDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0xff, 0xfb})
	}))
	defer srv.Close()

	clip, err := tts.New(srv.URL, "", time.Second).Synthesize(context.Background(), "hi", "en-US", "male-1")

	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", clip.ContentType)
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "upstream status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "voice not found", http.StatusBadRequest)
			},
			want: "tts status 400: voice not found",
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			want: "no audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := tts.New(srv.URL, "", time.Second).Synthesize(context.Background(), "hi", "en-US", "male-1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := tts.New(srv.URL, "", 50*time.Millisecond).Synthesize(context.Background(), "hi", "en-US", "male-1")
	assert.Error(t, err)
}
