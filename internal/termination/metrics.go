package termination

import (
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/sentiment"
)

// computeMetrics derives the per-turn Metrics from a DialogueState
// snapshot and the response confidence that just got produced, per
// spec.md §4.5's formulas.
func computeMetrics(state *domain.DialogueState, now time.Time, responseConfidence float64) Metrics {
	turnCount := state.TurnCount
	duration := now.Sub(state.StartedAt).Seconds()

	persistence := 0.3*min1(float64(turnCount)/10) +
		0.3*repetitionRatio(lastN(state.IntentHistory, 5)) +
		0.2*keywordScore(turnCount) +
		0.2*resistanceScore(state)

	frustration := 0.5*meanWeight(lastN(state.EmotionHistory, 3)) +
		0.3*maxWeight(state.EmotionHistory) +
		0.2*escalationDelta(state.EmotionHistory)

	effectiveness := 0.4*stageProgressScore(state.Stage) +
		0.3*max0(1-float64(turnCount)/10) +
		0.3*responseConfidence

	return Metrics{
		TurnCount:       turnCount,
		DurationSeconds: duration,
		Persistence:     clamp01(persistence),
		Frustration:     clamp01(frustration),
		Effectiveness:   clamp01(effectiveness),
		Aggression:      maxWeight(state.EmotionHistory),
		RepetitionRatio: repetitionRatio(lastN(state.IntentHistory, 5)),
	}
}

func lastN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// repetitionRatio = 1 - unique/total over the given window.
func repetitionRatio(window []string) float64 {
	if len(window) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(window))
	for _, v := range window {
		seen[v] = true
	}
	return 1 - float64(len(seen))/float64(len(window))
}

// keywordScore rises with turn count, capped at 1: a persistent caller
// accumulates more pitch-keyword hits the longer the call runs.
func keywordScore(turnCount int) float64 {
	return min1(float64(turnCount) / 8)
}

// resistanceScore: 0.8 if still in initial or a handling stage past 5
// turns, 0.6 if stuck in polite_decline, else 0.
func resistanceScore(state *domain.DialogueState) float64 {
	switch {
	case state.Stage == domain.StageInitial && state.TurnCount > 5:
		return 0.8
	case domain.IsHandlingStage(state.Stage) && state.TurnCount > 5:
		return 0.8
	case state.Stage == domain.StagePoliteDecline:
		return 0.6
	default:
		return 0
	}
}

func meanWeight(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	var sum float64
	for _, l := range labels {
		sum += sentiment.EmotionWeight(l)
	}
	return sum / float64(len(labels))
}

func maxWeight(labels []string) float64 {
	var m float64
	for _, l := range labels {
		if w := sentiment.EmotionWeight(l); w > m {
			m = w
		}
	}
	return m
}

// escalationDelta compares the weight of the most recent emotion against
// the trajectory's running mean up to that point: a positive delta means
// the caller is escalating, a negative or zero delta means steady/calming.
func escalationDelta(labels []string) float64 {
	if len(labels) < 2 {
		return 0
	}
	prior := labels[:len(labels)-1]
	last := sentiment.EmotionWeight(labels[len(labels)-1])
	return max0(last - meanWeight(prior))
}

// stageProgressScore rewards stages closer to resolution: handling
// stages are mid-progress, polite/firm decline stages are near-resolved.
func stageProgressScore(stage domain.Stage) float64 {
	switch stage {
	case domain.StageInitial:
		return 0.2
	case domain.StagePoliteDecline:
		return 0.8
	case domain.StageFirmRejection, domain.StageHangUpWarning:
		return 0.9
	case domain.StageCallEnd:
		return 1.0
	default:
		if domain.IsHandlingStage(stage) {
			return 0.5
		}
		return 0.3
	}
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	return max0(min1(v))
}
