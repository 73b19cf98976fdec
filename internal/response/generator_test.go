package response

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/llmclient"

	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	return Input{
		Strategy:         StrategyGentleDecline,
		Stage:            "handling_sales",
		TurnCount:        1,
		Personality:      PersonalityPolite,
		SpeechStyle:      SpeechNormal,
		SpamCategory:     "sales",
		CallerUtterance:  "We have a great deal for you today.",
		IntentConfidence: 0.9,
		EmotionalTone:    "neutral",
	}
}

func TestGenerateCacheHitShortCircuits(t *testing.T) {
	cache := cacheutil.NewMemory()
	llm := &llmclient.Fake{Response: llmclient.Response{Content: "Thank you, I'm not interested."}}
	gen := New(llm, "test-model", cache, time.Minute)

	in := baseInput()
	first := gen.Generate(context.Background(), in)
	require.False(t, first.Cached)
	require.Equal(t, 1, len(llm.Calls))

	second := gen.Generate(context.Background(), in)
	require.True(t, second.Cached)
	require.Equal(t, 1, len(llm.Calls), "cached path must not call the LLM again")
	require.Equal(t, first.Text, second.Text)
	require.Equal(t, first.Confidence, second.Confidence, "cache hit must replay the original confidence, not a hardcoded 1.0")
	require.Equal(t, first.Strategy, second.Strategy)
	require.Equal(t, first.EmotionalTone, second.EmotionalTone)
}

func TestGenerateLLMFailureFallsBackToTemplate(t *testing.T) {
	llm := &llmclient.Fake{Err: errors.New("backend unavailable")}
	gen := New(llm, "test-model", nil, time.Minute)

	in := baseInput()
	resp := gen.Generate(context.Background(), in)
	require.Equal(t, fallbackConfidence, resp.Confidence)
	require.NotEmpty(t, resp.Text)
}

func TestGenerateEmptyLLMResponseFallsBackToTemplate(t *testing.T) {
	llm := &llmclient.Fake{Response: llmclient.Response{Content: ""}}
	gen := New(llm, "test-model", nil, time.Minute)

	resp := gen.Generate(context.Background(), baseInput())
	require.Equal(t, fallbackConfidence, resp.Confidence)
	require.NotEmpty(t, resp.Text)
}

func TestGenerateNilLLMUsesTemplateBank(t *testing.T) {
	gen := New(nil, "", nil, time.Minute)
	resp := gen.Generate(context.Background(), baseInput())
	require.Equal(t, fallbackConfidence, resp.Confidence)
	require.NotEmpty(t, resp.Text)
}

func TestShouldTerminateOnTerminalStrategy(t *testing.T) {
	require.True(t, shouldTerminate(StrategyImmediateHangup, 1))
	require.True(t, shouldTerminate(StrategyFinalWarning, 1))
	require.False(t, shouldTerminate(StrategyGentleDecline, 1))
}

func TestShouldTerminateOnTurnThreshold(t *testing.T) {
	require.True(t, shouldTerminate(StrategyGentleDecline, terminationTurnThreshold))
	require.False(t, shouldTerminate(StrategyGentleDecline, terminationTurnThreshold-1))
}

func TestNextStageForMapsStrategies(t *testing.T) {
	require.Equal(t, "call_end", nextStageFor(StrategyImmediateHangup, "firm_rejection"))
	require.Equal(t, "hang_up_warning", nextStageFor(StrategyFinalWarning, "firm_rejection"))
	require.Equal(t, "firm_rejection", nextStageFor(StrategyClearRefusal, "handling_sales"))
	require.Equal(t, "polite_decline", nextStageFor(StrategyGentleDecline, "handling_sales"))
	require.Equal(t, "handling_sales", nextStageFor(StrategyWittyResponse, "handling_sales"))
}

func TestApplyPersonalityPoliteSoftens(t *testing.T) {
	out := applyPersonality("I am not interested.", PersonalityPolite)
	require.Contains(t, out, "appreciate")
}

func TestApplyPersonalityDirectStripsHedges(t *testing.T) {
	out := applyPersonality("I kind of think maybe this isn't for me.", PersonalityDirect)
	require.NotContains(t, out, "kind of")
	require.NotContains(t, out, "maybe")
}

func TestApplyEmotionControlAggressiveStripsHedges(t *testing.T) {
	out := applyEmotionControl("I guess I'm not interested.", "aggressive")
	require.NotContains(t, out, "I guess")
}

func TestApplyEmotionControlFriendlyPrependsGratitude(t *testing.T) {
	out := applyEmotionControl("I'm not interested.", "friendly")
	require.Contains(t, out, "Thank you")
}

func TestEnforceCeilingTruncatesAtWordBoundary(t *testing.T) {
	long := ""
	for i := 0; i < 600; i++ {
		long += "a"
	}
	out := enforceCeiling(long)
	require.LessOrEqual(t, len(out), hardCharCeiling)

	// 100 six-character words: the 500-char cut lands inside the 84th word,
	// so the output must end on the last whole word before it.
	words := strings.Repeat("words ", 100)
	out = enforceCeiling(words)
	require.LessOrEqual(t, len(out), hardCharCeiling)
	require.True(t, strings.HasSuffix(out, "words"), "must not end mid-word")
}

func TestBlendConfidenceClampedAndBoosted(t *testing.T) {
	normal := blendConfidence(1.0, StrategyGentleDecline)
	terminal := blendConfidence(1.0, StrategyImmediateHangup)
	require.Greater(t, terminal, normal)
	require.LessOrEqual(t, terminal, 1.0)
}

func TestTemplateForAlwaysNonEmpty(t *testing.T) {
	require.NotEmpty(t, templateFor("unknown_stage", "unknown_category"))
	require.NotEmpty(t, templateFor("handling_sales", "sales"))
}
