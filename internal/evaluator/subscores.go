package evaluator

import "ninjaengine/internal/domain"

// responseQuality rewards AI turns that aren't trivially short or
// repeated verbatim — a crude proxy for the caller actually getting a
// substantive, varied response each turn.
func responseQuality(state *domain.DialogueState) float64 {
	aiTurns := filterSpeaker(state.Turns, domain.SpeakerAI)
	if len(aiTurns) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(aiTurns))
	var substantive int
	for _, t := range aiTurns {
		if len(t.Text) >= 15 {
			substantive++
		}
		seen[t.Text] = true
	}
	uniqueness := float64(len(seen)) / float64(len(aiTurns))
	lengthScore := float64(substantive) / float64(len(aiTurns))
	return clamp01(0.5*uniqueness + 0.5*lengthScore)
}

// conversationFlow rewards a call that has moved past the initial stage
// (0.6 weight) and penalises long calls by turn count (0.4 weight,
// reaching zero at 16 turns).
func conversationFlow(state *domain.DialogueState) float64 {
	if state.TurnCount == 0 {
		return 0
	}
	progressed := 0.5
	if domain.IsHandlingStage(state.Stage) || state.Stage == domain.StagePoliteDecline ||
		state.Stage == domain.StageFirmRejection || state.Stage == domain.StageHangUpWarning ||
		state.Stage == domain.StageCallEnd {
		progressed = 1.0
	}
	turnsPenalty := clamp01(1 - float64(state.TurnCount)/16)
	return clamp01(0.6*progressed + 0.4*turnsPenalty)
}

// callerSatisfaction folds in the user profile's historical average
// satisfaction, defaulting to a neutral midpoint for first-time callers.
func callerSatisfaction(state *domain.DialogueState, profile UserProfileSnapshot) float64 {
	if profile.PastCallCount == 0 {
		return 0.5
	}
	return clamp01(profile.AvgSatisfaction)
}

// terminationAppropriateness rewards calls that ended for a sound reason
// rather than running out the turn/duration caps.
func terminationAppropriateness(state *domain.DialogueState) float64 {
	if !state.Ended {
		return 0.5
	}
	switch state.EndReason {
	case "explicit_termination", "excessive_persistence":
		return 1.0
	case "max_turns_exceeded", "max_duration_exceeded":
		return 0.4
	case "high_frustration", "ineffective_responses":
		return 0.3
	default:
		return 0.5
	}
}

// responseLatency rewards turns whose recorded latency stayed under the
// per-turn soft budget.
func responseLatency(state *domain.DialogueState) float64 {
	aiTurns := filterSpeaker(state.Turns, domain.SpeakerAI)
	if len(aiTurns) == 0 {
		return 1
	}
	const budgetMillis = 300
	var withinBudget int
	for _, t := range aiTurns {
		if t.LatencyMillis == 0 || t.LatencyMillis <= budgetMillis {
			withinBudget++
		}
	}
	return clamp01(float64(withinBudget) / float64(len(aiTurns)))
}

// contextualAwareness rewards key-point extraction density: the AI
// picked up on specific things the caller said, not just generic replies.
func contextualAwareness(state *domain.DialogueState) float64 {
	if state.TurnCount == 0 {
		return 0
	}
	density := float64(len(state.KeyPoints)) / float64(state.TurnCount)
	return clamp01(density * 2)
}

func filterSpeaker(turns []domain.TurnRecord, speaker domain.Speaker) []domain.TurnRecord {
	out := make([]domain.TurnRecord, 0, len(turns))
	for _, t := range turns {
		if t.Speaker == speaker {
			out = append(out, t)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
