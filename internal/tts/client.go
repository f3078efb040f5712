package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/wordflash/internal/audio"
	"github.com/vytor/wordflash/internal/logger"
)

// maxAudioBytes caps a single synthesized clip.
const maxAudioBytes = 10 << 20

// Client calls an HTTP text-to-speech service that answers a JSON request
// with the raw audio bytes.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func New(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type synthesizeReq struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

func (c *Client) Synthesize(ctx context.Context, text, language, voice string) (audio.Clip, error) {
	log := logger.FromContext(ctx).WithPrefix("tts").WithFields(map[string]any{
		"language": language,
		"voice":    voice,
	})

	body, err := json.Marshal(synthesizeReq{Text: text, Language: language, Voice: voice})
	if err != nil {
		return audio.Clip{}, err
	}

	log.Debug("requesting synthesis from: %s", c.endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return audio.Clip{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("synthesis request failed: %v", err)
		return audio.Clip{}, err
	}
	defer resp.Body.Close()

	log.Debug("synthesis response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("synthesis failed: status=%d, body=%s", resp.StatusCode, string(msg))
		return audio.Clip{}, fmt.Errorf("tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		log.Error("failed to read audio: %v", err)
		return audio.Clip{}, err
	}
	if len(data) == 0 {
		return audio.Clip{}, fmt.Errorf("tts returned no audio")
	}
	if len(data) > maxAudioBytes {
		return audio.Clip{}, fmt.Errorf("tts audio exceeds %d bytes", maxAudioBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(contentType, "audio/") {
		contentType = "audio/mpeg"
	}

	log.Info("synthesized %d bytes of %s", len(data), contentType)
	return audio.Clip{Data: data, ContentType: contentType}, nil
}
