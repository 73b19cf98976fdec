package intent

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
	"ninjaengine/internal/observability"
)

const cacheKeyPrefix = "intent:"

// FeedbackSample is one learn_from_feedback observation, consumed by the
// learning system to track classifier accuracy over time.
type FeedbackSample struct {
	Text       string
	Predicted  string
	Correct    string
	Confidence float64
	Timestamp  time.Time
	Warn       bool
}

// Classifier runs the keyword, semantic, and contextual layers and fuses
// their votes into a single Result, backed by a fingerprint cache.
type Classifier struct {
	cats  []compiledCategory
	emo   EmotionalLexicons
	cache cacheutil.Store
	ttl   time.Duration

	mu       sync.Mutex
	feedback []FeedbackSample
}

// New builds a Classifier from cfg. cache may be cacheutil.NewMemory() in
// tests or a Redis-backed store in production.
func New(cfg Config, cache cacheutil.Store, ttl time.Duration) (*Classifier, error) {
	cats, err := compileCategories(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("%w: intent config: %v", domain.ErrInputInvalid, err)
	}
	return &Classifier{cats: cats, emo: cfg.Emotional, cache: cache, ttl: ttl}, nil
}

// Classify fuses the three layers' votes for text. snapshot may be nil;
// the contextual layer only votes when it has ≥3 prior intents. On a
// cache hit the entire Result is returned and no layer runs.
func (c *Classifier) Classify(ctx context.Context, text string, snapshot *domain.DialogueState) (Result, error) {
	key := cacheKeyPrefix + fingerprint(text)
	if c.cache != nil {
		if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			var cached Result
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	var kw, sem, ctxResult *layerResult

	if r, err := keywordLayer(text, c.cats); err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("intent keyword layer failed")
	} else {
		kw = &r
	}

	if r, err := semanticLayer(text, c.cats); err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("intent semantic layer failed")
	} else {
		sem = &r
	}

	if r, err := contextualLayer(snapshot); err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("intent contextual layer failed")
	} else {
		ctxResult = &r
	}

	result := fuse(kw, sem, ctxResult)
	result.EmotionalTone = emotionalTone(text, c.emo)

	if result.Intent != unknownIntent {
		if sub, ok := subCategoryFor(result.Intent, text, c.cats); ok {
			result.SubCategory = sub
		}
	}

	if c.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
				observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("intent cache write failed")
			}
		}
	}

	return result, nil
}

func subCategoryFor(intentName, text string, cats []compiledCategory) (string, bool) {
	for _, c := range cats {
		if c.Name != intentName {
			continue
		}
		for sub, lexicon := range c.SubCategories {
			if containsAnyKeyword(text, lexicon) {
				return sub, true
			}
		}
	}
	return "", false
}

func containsAnyKeyword(text string, lexicon []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range lexicon {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// LearnFromFeedback records an accuracy sample. A warning is surfaced
// (via sample.Warn) when the prediction was wrong despite high confidence,
// consumed downstream by the Learning System.
func (c *Classifier) LearnFromFeedback(text, predicted, correct string, confidence float64) FeedbackSample {
	sample := FeedbackSample{
		Text:       text,
		Predicted:  predicted,
		Correct:    correct,
		Confidence: confidence,
		Timestamp:  time.Now(),
		Warn:       predicted != correct && confidence >= 0.8,
	}
	c.mu.Lock()
	c.feedback = append(c.feedback, sample)
	c.mu.Unlock()
	return sample
}

// Feedback returns all recorded feedback samples, for the Learning System
// to drain periodically.
func (c *Classifier) Feedback() []FeedbackSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FeedbackSample(nil), c.feedback...)
}

func fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
