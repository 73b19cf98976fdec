package response

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// fingerprint is a stable hash of the coarse-grained context that drives
// generation, not the literal caller utterance — turn_count is bucketed
// by 3 so adjacent turns within the same bucket share a cache entry.
func fingerprint(in Input) string {
	bucket := in.TurnCount / 3
	raw := fmt.Sprintf("%s|%s|%d|%s|%s|%s", in.Strategy, in.Stage, bucket, in.Personality, in.SpeechStyle, in.SpamCategory)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
