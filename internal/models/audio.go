package models

import "time"

type AudioCacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Text        string    `json:"text"`
	Language    string    `json:"language"`
	Voice       string    `json:"voice"`
	AudioRef    string    `json:"audio_ref"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
