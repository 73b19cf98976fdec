package response

import "strings"

// terminationTurnThreshold forces termination once a call has run this
// many turns, regardless of strategy.
const terminationTurnThreshold = 8

// terminalStrategies always end the call.
var terminalStrategies = map[Strategy]bool{
	StrategyImmediateHangup: true,
	StrategyFinalWarning:    true,
}

// shouldTerminate derives should_terminate from the chosen strategy and
// turn count.
func shouldTerminate(strategy Strategy, turnCount int) bool {
	return terminalStrategies[strategy] || turnCount >= terminationTurnThreshold
}

// nextStageFor maps a strategy to its resulting dialogue stage. Strategies
// outside this table leave the stage unchanged (caller passes the current
// stage through).
func nextStageFor(strategy Strategy, currentStage string) string {
	switch strategy {
	case StrategyImmediateHangup:
		return "call_end"
	case StrategyFinalWarning:
		return "hang_up_warning"
	case StrategyFirmDecline, StrategyClearRefusal:
		return "firm_rejection"
	case StrategyGentleDecline, StrategyExplainNotInterested:
		return "polite_decline"
	default:
		return currentStage
	}
}

var aggressiveMarkers = []string{"must", "demand", "now", "immediately", "stop calling"}
var friendlyMarkers = []string{"thank", "appreciate", "glad", "pleasure"}

// deriveEmotionalTone classifies the generated response's own tone from
// lexical markers, independent of the caller's detected tone — this is
// the AI's outgoing tone, reported alongside the response.
func deriveEmotionalTone(text string) string {
	lower := strings.ToLower(text)
	for _, m := range aggressiveMarkers {
		if strings.Contains(lower, m) {
			return "firm"
		}
	}
	for _, m := range friendlyMarkers {
		if strings.Contains(lower, m) {
			return "friendly"
		}
	}
	return "neutral"
}

// enforceCeiling truncates text to the hard character ceiling, preferring
// to cut at the last preceding space so the output doesn't end mid-word.
func enforceCeiling(text string) string {
	if len(text) <= hardCharCeiling {
		return text
	}
	cut := text[:hardCharCeiling]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
