package intent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultConfig(), cacheutil.NewMemory(), time.Hour)
	require.NoError(t, err)
	return c
}

func TestClassifyPicksLoanOffer(t *testing.T) {
	c := newTestClassifier(t)
	res, err := c.Classify(context.Background(), "We offer a great loan with a low interest rate", nil)
	require.NoError(t, err)
	require.Equal(t, "loan_offer", res.Intent)
	require.Greater(t, res.Confidence, 0.0)
}

func TestClassifyCacheHitSkipsLayers(t *testing.T) {
	c := newTestClassifier(t)
	ctx := context.Background()
	first, err := c.Classify(ctx, "special offer just for you", nil)
	require.NoError(t, err)

	second, err := c.Classify(ctx, "special offer just for you", nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestClassifyUnknownWhenNoLayerVotes(t *testing.T) {
	c := newTestClassifier(t)
	res, err := c.Classify(context.Background(), "just saying hello, how are you today", nil)
	require.NoError(t, err)
	require.Equal(t, "unknown", res.Intent)
	require.Equal(t, 0.0, res.Confidence)
}

func TestContextualLayerRequiresThreePriorIntents(t *testing.T) {
	snap := &domain.DialogueState{IntentHistory: []string{"loan_offer", "loan_offer"}}
	r, err := contextualLayer(snap)
	require.NoError(t, err)
	require.Equal(t, unknownIntent, r.intent)
}

func TestContextualLayerHighShareSetsContextInfluenced(t *testing.T) {
	snap := &domain.DialogueState{IntentHistory: []string{"loan_offer", "loan_offer", "loan_offer", "sales"}}
	r, err := contextualLayer(snap)
	require.NoError(t, err)
	require.Equal(t, "loan_offer", r.intent)
	require.True(t, r.contextInfluenced)
	require.InDelta(t, 0.75, r.confidence, 0.001)
}

func TestLearnFromFeedbackFlagsHighConfidenceMiss(t *testing.T) {
	c := newTestClassifier(t)
	sample := c.LearnFromFeedback("text", "loan_offer", "sales", 0.9)
	require.True(t, sample.Warn)

	sample2 := c.LearnFromFeedback("text", "loan_offer", "sales", 0.5)
	require.False(t, sample2.Warn)

	require.Len(t, c.Feedback(), 2)
}
