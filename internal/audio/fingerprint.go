package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint identifies one synthesized pronunciation.
type Fingerprint struct {
	Text     string
	Language string
	Voice    string
}

// Normalize lower-cases and trims the text and trims the language and voice.
// Two requests that normalize to the same tuple share one cache entry.
func Normalize(text, language, voice string) Fingerprint {
	return Fingerprint{
		Text:     strings.ToLower(strings.TrimSpace(text)),
		Language: strings.TrimSpace(language),
		Voice:    strings.TrimSpace(voice),
	}
}

// Key is the stable storage key of the fingerprint.
func (f Fingerprint) Key() string {
	h := sha256.New()
	// NUL separators keep ("ab","c") and ("a","bc") apart.
	h.Write([]byte(f.Text))
	h.Write([]byte{0})
	h.Write([]byte(f.Language))
	h.Write([]byte{0})
	h.Write([]byte(f.Voice))
	return hex.EncodeToString(h.Sum(nil))
}
