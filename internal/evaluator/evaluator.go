// Package evaluator implements the Effectiveness Evaluator: six
// sub-evaluations run in parallel against DialogueState/TurnRecords/user
// profile data only, combined into a weighted overall score.
package evaluator

import (
	"context"

	"ninjaengine/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Weights per spec.md §4.7.1, in sub-evaluation declaration order:
// response quality, conversation flow, caller satisfaction, termination
// appropriateness, response latency, contextual awareness.
const (
	weightResponseQuality    = 0.25
	weightConversationFlow   = 0.20
	weightCallerSatisfaction = 0.20
	weightTerminationApprop  = 0.15
	weightResponseLatency    = 0.10
	weightContextualAwareness = 0.10
)

// SubScores names each [0,1] sub-evaluation score.
type SubScores struct {
	ResponseQuality      float64 `json:"response_quality"`
	ConversationFlow     float64 `json:"conversation_flow"`
	CallerSatisfaction   float64 `json:"caller_satisfaction"`
	TerminationAppropriate float64 `json:"termination_appropriateness"`
	ResponseLatency      float64 `json:"response_latency"`
	ContextualAwareness  float64 `json:"contextual_awareness"`
}

// Result is the evaluator's full output.
type Result struct {
	Overall   float64   `json:"overall"`
	SubScores SubScores `json:"sub_scores"`
}

// UserProfileSnapshot is the narrow slice of UserProfile the evaluator
// reads, decoupling it from the full domain.UserProfile shape.
type UserProfileSnapshot struct {
	PastCallCount int
	AvgSatisfaction float64
}

// Evaluate runs the six sub-evaluations concurrently and combines them
// into the weighted overall score. Sub-evaluations never make external
// calls and none of them returns an error, so the returned error is
// always nil.
func Evaluate(ctx context.Context, state *domain.DialogueState, profile UserProfileSnapshot) (Result, error) {
	var scores SubScores

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { scores.ResponseQuality = responseQuality(state); return nil })
	g.Go(func() error { scores.ConversationFlow = conversationFlow(state); return nil })
	g.Go(func() error { scores.CallerSatisfaction = callerSatisfaction(state, profile); return nil })
	g.Go(func() error { scores.TerminationAppropriate = terminationAppropriateness(state); return nil })
	g.Go(func() error { scores.ResponseLatency = responseLatency(state); return nil })
	g.Go(func() error { scores.ContextualAwareness = contextualAwareness(state); return nil })

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	overall := weightResponseQuality*scores.ResponseQuality +
		weightConversationFlow*scores.ConversationFlow +
		weightCallerSatisfaction*scores.CallerSatisfaction +
		weightTerminationApprop*scores.TerminationAppropriate +
		weightResponseLatency*scores.ResponseLatency +
		weightContextualAwareness*scores.ContextualAwareness

	return Result{Overall: overall, SubScores: scores}, nil
}
