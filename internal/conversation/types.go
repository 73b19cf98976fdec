// Package conversation implements the Conversation Manager: the per-turn
// orchestrator and the only component exported to external callers. It
// loads dialogue state, fans out intent/sentiment analysis concurrently,
// selects a strategy, generates a response, and runs the termination
// decider, all within a single per-turn flow.
package conversation

import (
	"time"

	"ninjaengine/internal/dialogue"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/response"
	"ninjaengine/internal/sentiment"
	"ninjaengine/internal/termination"
)

// turnLatencyBudget is the soft end-to-end per-turn budget; exceeding it
// never blocks the reply, it only logs a warning.
const turnLatencyBudget = 300 * time.Millisecond

// Dependencies bundles everything the Manager needs at construction, per
// the DI-bundle-over-singleton requirement: no package-level state here.
type Dependencies struct {
	Tracker     *dialogue.Tracker
	Classifier  *intent.Classifier
	Analyzer    *sentiment.Analyzer
	Generator   *response.Generator
	Decider     *termination.Decider
	Strategies  StrategyTable
	Personality response.Personality
	SpeechStyle response.SpeechStyle
}

// TurnInput is the caller-provided input for one turn.
type TurnInput struct {
	CallID            string
	UserID            string
	CallerFingerprint string
	SpamCategory      string
	Text              string
}

// TurnResult is the Manager's per-turn output.
type TurnResult struct {
	AIResponse       response.AIResponse
	IntentResult     intent.Result
	Analysis         sentiment.ConversationAnalysis
	Stage            string
	Terminated       bool
	TerminationReason termination.Reason
	LatencyExceeded  bool
}
