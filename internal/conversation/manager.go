package conversation

import (
	"context"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/observability"
	"ninjaengine/internal/response"
	"ninjaengine/internal/sentiment"

	"golang.org/x/sync/errgroup"
)

// Manager is the per-turn coordinator, the only component exported to
// external callers.
type Manager struct {
	deps Dependencies
}

// New builds a Manager from a Dependencies bundle. deps.Strategies
// defaults to DefaultStrategyTable when nil.
func New(deps Dependencies) *Manager {
	if deps.Strategies == nil {
		deps.Strategies = DefaultStrategyTable()
	}
	if deps.Personality == "" {
		deps.Personality = response.PersonalityPolite
	}
	if deps.SpeechStyle == "" {
		deps.SpeechStyle = response.SpeechNormal
	}
	return &Manager{deps: deps}
}

// HandleTurn runs the full per-turn pipeline described in spec.md §4.6.
func (m *Manager) HandleTurn(ctx context.Context, in TurnInput) (TurnResult, error) {
	started := time.Now()

	// Step 1: load state.
	state := m.deps.Tracker.GetOrCreate(in.CallID, in.UserID, in.CallerFingerprint)

	// Step 2: classify + analyze concurrently; both degrade gracefully.
	var intentResult intent.Result
	var analysis sentiment.ConversationAnalysis
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := m.deps.Classifier.Classify(gctx, in.Text, state)
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("intent classification failed, degrading to unknown")
			intentResult = intent.Result{Intent: "unknown", EmotionalTone: "neutral"}
			return nil
		}
		intentResult = result
		return nil
	})
	g.Go(func() error {
		analysis = m.deps.Analyzer.Analyze(gctx, in.Text)
		return nil
	})
	_ = g.Wait() // both branches handle their own errors; never fails the turn

	// Step 3: record the caller turn.
	state, err := m.deps.Tracker.Update(ctx, in.CallID, domain.SpeakerCaller, in.Text, intentResult.Intent, intentResult.Confidence, analysis.Emotion.Primary, analysis.Emotion.Confidence)
	if err != nil {
		return TurnResult{}, err
	}

	// Step 4: select strategy.
	strategy := selectStrategy(m.deps.Strategies, state.Stage, m.deps.Personality, state.TurnCount, intentResult.EmotionalTone)

	// Step 5: generate response.
	genInput := response.Input{
		Strategy:         strategy,
		Stage:            string(state.Stage),
		TurnCount:        state.TurnCount,
		Personality:      m.deps.Personality,
		SpeechStyle:      m.deps.SpeechStyle,
		SpamCategory:     in.SpamCategory,
		Turns:            turnRefs(state.Turns),
		CallerUtterance:  in.Text,
		IntentConfidence: intentResult.Confidence,
		EmotionalTone:    intentResult.EmotionalTone,
	}
	aiResponse := m.deps.Generator.Generate(ctx, genInput)

	// Step 6: record the AI turn.
	state, err = m.deps.Tracker.Update(ctx, in.CallID, domain.SpeakerAI, aiResponse.Text, "", 0, "", 0)
	if err != nil {
		return TurnResult{}, err
	}

	// Step 7: run the termination decider.
	decision := m.deps.Decider.Decide(state, aiResponse.ShouldTerminate, aiResponse.Confidence, time.Now())
	result := TurnResult{
		AIResponse:   aiResponse,
		IntentResult: intentResult,
		Analysis:     analysis,
		Stage:        string(state.Stage),
	}
	if decision.Terminate {
		result.Terminated = true
		result.TerminationReason = decision.Reason
		result.AIResponse.Text = decision.FinalUtterance
		go m.endAsync(in.CallID, string(decision.Reason))
	}

	if elapsed := time.Since(started); elapsed > turnLatencyBudget {
		result.LatencyExceeded = true
		observability.LoggerForCall(ctx, in.CallID).Warn().Dur("elapsed", elapsed).Msg("turn exceeded soft latency budget")
	}

	return result, nil
}

// endAsync schedules end(call_id, reason) off the request path, per
// spec.md §4.6 step 7.
func (m *Manager) endAsync(callID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := m.deps.Tracker.End(ctx, callID, reason); err != nil {
		observability.LoggerForCall(ctx, callID).Warn().Err(err).Msg("async call end failed")
	}
}

func turnRefs(turns []domain.TurnRecord) []response.TurnRef {
	refs := make([]response.TurnRef, len(turns))
	for i, t := range turns {
		refs[i] = response.TurnRef{Speaker: string(t.Speaker), Text: t.Text}
	}
	return refs
}
