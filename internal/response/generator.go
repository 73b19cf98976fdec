package response

import (
	"context"
	"encoding/json"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
	"ninjaengine/internal/llmclient"
	"ninjaengine/internal/observability"
)

const cacheKeyPrefix = "response:"

// confidenceCacheThreshold gates cache writes: a low-confidence response
// (e.g. the deterministic fallback) is never cached, so the next call in
// the same bucket gets a fresh attempt rather than repeating a guess.
const confidenceCacheThreshold = 0.6

// Generator produces an AIResponse for one dialogue turn: cache lookup,
// LLM (or template) base generation, personality/emotion rewriting, and
// post-analysis of termination/stage-transition hints.
type Generator struct {
	llm   llmclient.Provider
	model string
	cache cacheutil.Store
	ttl   time.Duration
}

// New builds a Generator. llm may be nil, in which case every call falls
// straight through to the template bank.
func New(llm llmclient.Provider, model string, cache cacheutil.Store, ttl time.Duration) *Generator {
	return &Generator{llm: llm, model: model, cache: cache, ttl: ttl}
}

// Generate runs the full pipeline for in, never returning an error: every
// failure resolves to the deterministic fallback contract.
func (g *Generator) Generate(ctx context.Context, in Input) AIResponse {
	started := time.Now()
	key := cacheKeyPrefix + fingerprint(in)

	if g.cache != nil {
		if raw, ok, err := g.cache.Get(ctx, key); err == nil && ok {
			if entry, ok := decodeCacheEntry(raw); ok {
				resp := AIResponse{
					Text:            entry.Text,
					Strategy:        entry.Strategy,
					Confidence:      entry.Confidence,
					EmotionalTone:   entry.EmotionalTone,
					ShouldTerminate: shouldTerminate(entry.Strategy, in.TurnCount),
					NextStage:       nextStageFor(entry.Strategy, in.Stage),
					Cached:          true,
					ContextHash:     key,
					CreatedAt:       started,
				}
				resp.GenerationTimeMS = time.Since(started).Milliseconds()
				return resp
			}
		}
	}

	text, fellBack := g.baseGenerate(ctx, in)
	text = applyPersonality(text, in.Personality)
	text = applyEmotionControl(text, in.EmotionalTone)
	text = enforceCeiling(text)

	confidence := fallbackConfidence
	if !fellBack {
		confidence = blendConfidence(in.IntentConfidence, in.Strategy)
	}

	resp := AIResponse{
		Text:            text,
		Confidence:      confidence,
		EmotionalTone:   deriveEmotionalTone(text),
		Strategy:        in.Strategy,
		ShouldTerminate: shouldTerminate(in.Strategy, in.TurnCount),
		NextStage:       nextStageFor(in.Strategy, in.Stage),
		Cached:          false,
		ContextHash:     key,
		CreatedAt:       started,
	}
	resp.GenerationTimeMS = time.Since(started).Milliseconds()

	if g.cache != nil && !fellBack && confidence >= confidenceCacheThreshold {
		entry := domain.ResponseCacheEntry{
			Fingerprint:   key,
			Text:          resp.Text,
			Strategy:      resp.Strategy,
			Confidence:    resp.Confidence,
			EmotionalTone: resp.EmotionalTone,
			CreatedAt:     started,
			ExpiresAt:     started.Add(g.ttl),
		}
		if raw, err := json.Marshal(entry); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("response cache entry marshal failed")
		} else if err := g.cache.Set(ctx, key, string(raw), g.ttl); err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("response cache write failed")
		}
	}
	return resp
}

// decodeCacheEntry unmarshals a stored ResponseCacheEntry, reporting false
// on any decode failure or on an entry already past its own TTL (defensive
// against a cache backend that doesn't itself expire tombstoned keys).
func decodeCacheEntry(raw string) (domain.ResponseCacheEntry, bool) {
	var entry domain.ResponseCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.ResponseCacheEntry{}, false
	}
	if !entry.ExpiresAt.IsZero() && entry.Expired(time.Now()) {
		return domain.ResponseCacheEntry{}, false
	}
	return entry, true
}

// baseGenerate tries the LLM and falls back to the template bank on any
// failure or empty response. The bool return reports whether the template
// fallback was used.
func (g *Generator) baseGenerate(ctx context.Context, in Input) (string, bool) {
	if g.llm == nil {
		return templateFor(in.Stage, in.SpamCategory), true
	}

	req := llmclient.Request{
		Model:       g.model,
		Messages:    buildMessages(in),
		Temperature: temperatureFor(in.Personality),
		MaxTokens:   maxTokensFor(in.SpeechStyle),
		TopP:        1,
		Stop:        stopSequences,
	}

	resp, err := g.llm.Complete(ctx, req)
	if err != nil || resp.Content == "" {
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("response LLM backend failed, using template fallback")
		}
		return templateFor(in.Stage, in.SpamCategory), true
	}
	return resp.Content, false
}
