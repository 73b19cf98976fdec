package sentiment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/observability"
)

const cacheKeyPrefix = "sentiment:"
const neutralFallbackConfidence = 0.5

// RemoteScorer is the subset of RemoteBackend the Analyzer depends on, so
// tests can substitute a fake.
type RemoteScorer interface {
	Ready() bool
	Score(ctx context.Context, text string) (EmotionResult, SentimentResult, error)
}

// Analyzer runs the local/remote/lexicon-fallback backend chain and
// attaches the derived signal fields (persistence indicators, termination
// signals, intent signals, stage prediction, emotional intensity).
type Analyzer struct {
	local  Scorer
	remote RemoteScorer
	lex    Lexicons
	cache  cacheutil.Store
	ttl    time.Duration
}

// New builds an Analyzer. remote may be nil to skip tier 2 entirely.
func New(local Scorer, remote RemoteScorer, lex Lexicons, cache cacheutil.Store, ttl time.Duration) *Analyzer {
	return &Analyzer{local: local, remote: remote, lex: lex, cache: cache, ttl: ttl}
}

// Analyze returns the full ConversationAnalysis for text, trying local,
// then remote, then lexicon fallback, then a neutral default.
func (a *Analyzer) Analyze(ctx context.Context, text string) ConversationAnalysis {
	key := cacheKeyPrefix + fingerprint(text)
	if a.cache != nil {
		if raw, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			var cached ConversationAnalysis
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached
			}
		}
	}

	emotion, sent, source, ok := a.runBackends(ctx, text)
	if !ok {
		emotion = EmotionResult{Primary: "neutral", Confidence: neutralFallbackConfidence, Scores: map[string]float64{"neutral": neutralFallbackConfidence}}
		sent = SentimentResult{Label: SentimentNeutral, Confidence: neutralFallbackConfidence, Scores: map[string]float64{SentimentNeutral: neutralFallbackConfidence}}
		source = "neutral_default"
	}

	analysis := ConversationAnalysis{
		Sentiment:             sent,
		Emotion:                emotion,
		IntentSignals:          intentSignals(text, a.lex),
		PersistenceIndicators:  persistenceIndicators(text, a.lex),
		TerminationSignals:     terminationSignals(text, a.lex),
		EmotionalIntensity:     emotionalIntensity(emotion.Scores),
		StagePrediction:        stagePrediction(text, a.lex),
		Source:                 source,
	}

	if a.cache != nil {
		if data, err := json.Marshal(analysis); err == nil {
			if err := a.cache.Set(ctx, key, string(data), a.ttl); err != nil {
				observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("sentiment cache write failed")
			}
		}
	}
	return analysis
}

func (a *Analyzer) runBackends(ctx context.Context, text string) (EmotionResult, SentimentResult, string, bool) {
	if a.local != nil && a.local.Ready() {
		if emotion, sent, err := a.local.Score(ctx, text); err == nil {
			return emotion, sent, "local", true
		} else {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("sentiment local backend failed")
		}
	}

	if a.remote != nil && a.remote.Ready() {
		if emotion, sent, err := a.remote.Score(ctx, text); err == nil {
			return emotion, sent, "remote", true
		} else {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("sentiment remote backend failed")
		}
	}

	emotion := lexiconFallbackScore(text, a.lex)
	return emotion, sentimentFromEmotion(emotion), "fallback", true
}

func fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
