package learning

import (
	"testing"
	"time"

	"ninjaengine/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestUpdatePerCallAccumulatesRunningAverage(t *testing.T) {
	s := New()
	s.UpdatePerCall("loan_offer", "firm_decline", 0.8, 3, true)
	s.UpdatePerCall("loan_offer", "firm_decline", 0.6, 5, false)

	perf := s.strategies[strategyKey("loan_offer", "firm_decline")]
	require.Equal(t, 2, perf.UsageCount)
	require.Equal(t, 1, perf.SuccessCount)
	require.InDelta(t, 0.7, perf.AvgEffectiveness, 0.001)
}

func TestUpdatePerBatchRetainsPatternsAtThreshold(t *testing.T) {
	s := New()
	calls := make([]CallOutcome, 0)
	for i := 0; i < 3; i++ {
		calls = append(calls, CallOutcome{IntentCategory: "sales", Strategy: "gentle_decline", EffectivenessScore: 0.9, TurnsToEnd: 2, Success: true, Pattern: "successful"})
	}
	insights := s.UpdatePerBatch(calls)

	var sawPattern bool
	for _, in := range insights {
		if in.Category == "effective_pattern" {
			sawPattern = true
		}
	}
	require.True(t, sawPattern)
}

func TestUpdatePerBatchDropsPatternsBelowThreshold(t *testing.T) {
	s := New()
	calls := []CallOutcome{
		{IntentCategory: "sales", Strategy: "gentle_decline", EffectivenessScore: 0.9, Success: true, Pattern: "rare_pattern"},
		{IntentCategory: "sales", Strategy: "gentle_decline", EffectivenessScore: 0.9, Success: true, Pattern: "rare_pattern"},
	}
	insights := s.UpdatePerBatch(calls)
	for _, in := range insights {
		require.NotEqual(t, "effective_pattern", in.Category)
	}
}

func TestUnderperformingStrategyInsightGenerated(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.UpdatePerCall("loan_offer", "witty_response", 0.2, 6, false)
	}
	insights := s.generateInsights(nil, time.Now())
	var sawUnderperforming bool
	for _, in := range insights {
		if in.Category == "underperforming_strategy" {
			sawUnderperforming = true
		}
	}
	require.True(t, sawUnderperforming)
}

func TestExportImportRoundTripIsByteEqual(t *testing.T) {
	s := New()
	s.UpdatePerCall("loan_offer", "firm_decline", 0.85, 3, true)

	data, err := s.Export()
	require.NoError(t, err)

	s2 := New()
	require.NoError(t, s2.Import(data))
	data2, err := s2.Export()
	require.NoError(t, err)

	require.Equal(t, data, data2)
}

func TestSuccessRateDefaultsToHealthyWithNoData(t *testing.T) {
	s := New()
	require.Equal(t, 1.0, s.SuccessRate())
	require.Equal(t, 0.0, s.TerminationRate())
}

func TestAppliedInsightsFiltersLowConfidence(t *testing.T) {
	insights := []domain.Insight{
		{Category: "a", Confidence: 0.9},
		{Category: "b", Confidence: 0.5},
	}
	applied := AppliedInsights(insights)
	require.Len(t, applied, 1)
	require.Equal(t, "a", applied[0].Category)
}
