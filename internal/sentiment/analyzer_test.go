package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ninjaengine/internal/cacheutil"
)

type notReadyScorer struct{}

func (notReadyScorer) Ready() bool { return false }
func (notReadyScorer) Score(context.Context, string) (EmotionResult, SentimentResult, error) {
	return EmotionResult{}, SentimentResult{}, errors.New("should not be called")
}

func newTestAnalyzer() *Analyzer {
	return New(NewLexiconScorer(DefaultLexicons()), nil, DefaultLexicons(), cacheutil.NewMemory(), time.Hour)
}

func TestAnalyzeUsesLocalScorerWhenReady(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze(context.Background(), "I am so angry, stop calling me")
	require.Equal(t, "local", res.Source)
	require.Equal(t, "anger", res.Emotion.Primary)
}

func TestAnalyzeSkipsNotReadyLocalScorer(t *testing.T) {
	a := New(notReadyScorer{}, nil, DefaultLexicons(), cacheutil.NewMemory(), time.Hour)
	res := a.Analyze(context.Background(), "fine, thank you")
	require.Equal(t, "fallback", res.Source)
}

func TestAnalyzeCachesResult(t *testing.T) {
	a := newTestAnalyzer()
	ctx := context.Background()
	first := a.Analyze(ctx, "please stop calling me, goodbye")
	second := a.Analyze(ctx, "please stop calling me, goodbye")
	require.Equal(t, first, second)
}

func TestTerminationSignalsDetected(t *testing.T) {
	res := newTestAnalyzer().Analyze(context.Background(), "ok, goodbye, hang up now")
	require.Contains(t, res.TerminationSignals, "goodbye")
}

func TestStagePredictionDefaultsUnknown(t *testing.T) {
	require.Equal(t, "unknown", stagePrediction("xyz abc 123", DefaultLexicons()))
}

func TestLexiconFallbackScoreFormula(t *testing.T) {
	res := lexiconFallbackScore("angry furious", DefaultLexicons())
	require.Equal(t, "anger", res.Primary)
	require.InDelta(t, 0.7, res.Confidence, 0.001)
}

func TestEmotionalIntensityWeightsBaseEmotionsOnly(t *testing.T) {
	scores := map[string]float64{"anger": 1.0, "neutral": 0, "firm": 1.0}
	intensity := emotionalIntensity(scores)
	require.InDelta(t, 1.0, intensity, 0.001)
}
