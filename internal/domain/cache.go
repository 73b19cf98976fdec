package domain

import "time"

// ResponseCacheEntry is a stored response-generation result, addressed by
// content fingerprint (see internal/cacheutil). Reused verbatim on a fresh
// cache hit rather than re-run through the generation pipeline.
type ResponseCacheEntry struct {
	Fingerprint   string    `json:"fingerprint"`
	Text          string    `json:"text"`
	Strategy      string    `json:"strategy"`
	Confidence    float64   `json:"confidence"`
	EmotionalTone string    `json:"emotional_tone"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL as of now.
func (e ResponseCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
