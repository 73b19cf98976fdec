package evaluator

import (
	"context"
	"testing"
	"time"

	"ninjaengine/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestEvaluateProducesWeightedOverall(t *testing.T) {
	state := &domain.DialogueState{
		CallID:    "call-1",
		Stage:     domain.StagePoliteDecline,
		TurnCount: 4,
		StartedAt: time.Now().Add(-30 * time.Second),
		Turns: []domain.TurnRecord{
			{Speaker: domain.SpeakerCaller, Text: "We have a loan offer for you."},
			{Speaker: domain.SpeakerAI, Text: "Thanks, but I'm not interested in any loan offers today.", LatencyMillis: 120},
			{Speaker: domain.SpeakerCaller, Text: "Are you sure? Great rates."},
			{Speaker: domain.SpeakerAI, Text: "I'm sure, thank you for calling.", LatencyMillis: 90},
		},
		KeyPoints: []string{"loan rates"},
		Ended:     true,
		EndReason: "explicit_termination",
	}

	result, err := Evaluate(context.Background(), state, UserProfileSnapshot{PastCallCount: 3, AvgSatisfaction: 0.7})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Overall, 0.0)
	require.LessOrEqual(t, result.Overall, 1.0)
	require.Greater(t, result.SubScores.TerminationAppropriate, 0.5)
}

func TestEvaluateHandlesEmptyState(t *testing.T) {
	state := &domain.DialogueState{CallID: "call-2", StartedAt: time.Now()}
	result, err := Evaluate(context.Background(), state, UserProfileSnapshot{})
	require.NoError(t, err)
	require.Equal(t, 0.0, result.SubScores.ResponseQuality)
}

func TestCallerSatisfactionDefaultsNeutralForFirstTimeCaller(t *testing.T) {
	state := &domain.DialogueState{}
	require.Equal(t, 0.5, callerSatisfaction(state, UserProfileSnapshot{PastCallCount: 0}))
}

func TestTerminationAppropriatenessRewardsExplicitReason(t *testing.T) {
	state := &domain.DialogueState{Ended: true, EndReason: "excessive_persistence"}
	require.Equal(t, 1.0, terminationAppropriateness(state))
}
