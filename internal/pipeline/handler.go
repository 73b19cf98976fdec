package pipeline

import (
	"context"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/evaluator"
	"ninjaengine/internal/learning"
	"ninjaengine/internal/store"
	"ninjaengine/internal/summary"

	"golang.org/x/sync/errgroup"
)

// Dependencies bundles the post-call handlers' collaborators, per the
// DI-bundle requirement: no package-level singletons.
type Dependencies struct {
	Store     *store.Store
	Cache     *AnalysisCache
	Summary   *summary.Generator
	Learning  *learning.System
	Queue     *Queue
	ResultsChannel string
}

// FullAnalysisResult is the combined output of the full_analysis task:
// content + effectiveness run in parallel, then summary consumes both.
type FullAnalysisResult struct {
	Content       ContentAnalysis    `json:"content"`
	Effectiveness evaluator.Result   `json:"effectiveness"`
	Summary       string             `json:"summary"`
}

// handleFullAnalysis implements spec.md §4.7's fan-out: content and
// effectiveness run concurrently; summary strictly follows, since it
// consumes both outputs.
func handleFullAnalysis(ctx context.Context, deps Dependencies, task domain.QueuedTask, state *domain.DialogueState, profile evaluator.UserProfileSnapshot) (FullAnalysisResult, error) {
	if cached, ok := tryCachedFullAnalysis(ctx, deps, task.CallID); ok {
		return cached, nil
	}

	var content ContentAnalysis
	var effectiveness evaluator.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		content = analyzeContent(state)
		return nil
	})
	g.Go(func() error {
		result, err := evaluator.Evaluate(gctx, state, profile)
		if err != nil {
			return err
		}
		effectiveness = result
		return nil
	})
	if err := g.Wait(); err != nil {
		return FullAnalysisResult{}, err
	}

	summaryText := ""
	if deps.Summary != nil {
		summaryText = deps.Summary.Generate(ctx, summary.Input{
			State:             state,
			IntentCategory:    content.DominantCategory,
			EffectivenessScore: effectiveness.Overall,
			TerminationReason: state.EndReason,
			Style:             summary.StyleComprehensive,
		})
	}

	result := FullAnalysisResult{Content: content, Effectiveness: effectiveness, Summary: summaryText}

	if deps.Cache != nil {
		_ = deps.Cache.Set(ctx, task.CallID, "content", content)
		_ = deps.Cache.Set(ctx, task.CallID, "effectiveness", effectiveness)
		_ = deps.Cache.Set(ctx, task.CallID, "summary", summaryText)
	}
	if deps.Store != nil {
		_ = deps.Store.SaveAnalysisResult(ctx, task.CallID, "full_analysis", result)
	}
	if deps.Learning != nil {
		deps.Learning.UpdatePerCall(content.DominantCategory, state.EndReason, effectiveness.Overall, state.TurnCount, effectiveness.Overall >= 0.6)
	}
	return result, nil
}

func tryCachedFullAnalysis(ctx context.Context, deps Dependencies, callID string) (FullAnalysisResult, bool) {
	if deps.Cache == nil {
		return FullAnalysisResult{}, false
	}
	if !deps.Cache.HasAll(ctx, callID, []string{"content", "effectiveness", "summary"}) {
		return FullAnalysisResult{}, false
	}
	var result FullAnalysisResult
	_, _ = deps.Cache.Get(ctx, callID, "content", &result.Content)
	_, _ = deps.Cache.Get(ctx, callID, "effectiveness", &result.Effectiveness)
	var summaryText string
	_, _ = deps.Cache.Get(ctx, callID, "summary", &summaryText)
	result.Summary = summaryText
	return result, true
}

// handleEffectivenessEval runs the effectiveness sub-evaluation alone,
// for a standalone effectiveness task.
func handleEffectivenessEval(ctx context.Context, deps Dependencies, task domain.QueuedTask, state *domain.DialogueState, profile evaluator.UserProfileSnapshot) (evaluator.Result, error) {
	result, err := evaluator.Evaluate(ctx, state, profile)
	if err != nil {
		return evaluator.Result{}, err
	}
	if deps.Cache != nil {
		_ = deps.Cache.Set(ctx, task.CallID, "effectiveness", result)
	}
	return result, nil
}

// handleSummaryGeneration runs the summary generator alone, for a
// standalone summary task.
func handleSummaryGeneration(ctx context.Context, deps Dependencies, task domain.QueuedTask, state *domain.DialogueState) (string, error) {
	if deps.Summary == nil {
		return "", nil
	}
	text := deps.Summary.Generate(ctx, summary.Input{State: state, Style: summary.StyleComprehensive})
	if deps.Cache != nil {
		_ = deps.Cache.Set(ctx, task.CallID, "summary", text)
	}
	return text, nil
}

// handleContentAnalysis runs the content-analysis leg alone, for a
// standalone content_analysis task — the same derivation handleFullAnalysis
// runs inline as one branch of its fan-out.
func handleContentAnalysis(ctx context.Context, deps Dependencies, task domain.QueuedTask, state *domain.DialogueState) (ContentAnalysis, error) {
	content := analyzeContent(state)
	if deps.Cache != nil {
		_ = deps.Cache.Set(ctx, task.CallID, "content", content)
	}
	return content, nil
}

// handleTranscription finalizes the call's transcript as a standalone
// task. The dialogue engine only ever operates on already-transcribed
// caller text (spec.md's speech-to-text is out of scope), so this stage
// is a pass-through that records the turn count already present on state.
func handleTranscription(ctx context.Context, deps Dependencies, task domain.QueuedTask, state *domain.DialogueState) error {
	if deps.Store != nil {
		return deps.Store.SaveAnalysisResult(ctx, task.CallID, "transcription", map[string]int{"turn_count": state.TurnCount})
	}
	return nil
}

// taskTimeout bounds the context given to a single task handler attempt;
// a handler that returns an error on expiry is handled like any other
// failed attempt.
const taskTimeout = 30 * time.Second
