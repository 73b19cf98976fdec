// Package learning implements the Learning System: per-call and
// per-batch strategy-performance updates, pattern recognition, insight
// generation, and a deterministic export/import snapshot.
package learning

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"ninjaengine/internal/domain"
)

const snapshotVersion = 1

// minPatternFrequency is the minimum occurrence count for a conversation
// pattern to be retained, per spec.md §4.7.3.
const minPatternFrequency = 3

// insightConfidenceApplied is the threshold at or above which an insight is
// "applied": fed into Termination Decider adaptation and strategy-table
// tuning.
const insightConfidenceApplied = 0.7

// System owns the per-(intent,strategy) performance table and adapted
// thresholds, updated by post-call pipeline workers.
type System struct {
	mu         sync.Mutex
	strategies map[string]domain.StrategyPerformance
	thresholds map[string]float64
}

// New builds an empty Learning System.
func New() *System {
	return &System{
		strategies: make(map[string]domain.StrategyPerformance),
		thresholds: make(map[string]float64),
	}
}

func strategyKey(intentCategory, strategy string) string {
	return intentCategory + "|" + strategy
}

// UpdatePerCall folds one completed call's outcome into its
// (intent_category, strategy) running aggregate.
func (s *System) UpdatePerCall(intentCategory, strategy string, effectivenessScore float64, turnsToEnd int, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strategyKey(intentCategory, strategy)
	perf := s.strategies[key]
	perf.IntentCategory = intentCategory
	perf.Strategy = strategy

	perf.AvgEffectiveness = runningAverage(perf.AvgEffectiveness, perf.UsageCount, effectivenessScore)
	perf.AvgTurnsToEnd = runningAverage(perf.AvgTurnsToEnd, perf.UsageCount, float64(turnsToEnd))
	perf.UsageCount++
	if success {
		perf.SuccessCount++
	}

	s.strategies[key] = roundPerf(perf)
}

func runningAverage(current float64, count int, next float64) float64 {
	if count == 0 {
		return next
	}
	return (current*float64(count) + next) / float64(count+1)
}

// CallOutcome is one member of a batch for UpdatePerBatch.
type CallOutcome struct {
	IntentCategory    string
	Strategy          string
	EffectivenessScore float64
	TurnsToEnd        int
	Success           bool
	Pattern           string // e.g. "successful", "failed", "escalation", "de_escalation"
}

// UpdatePerBatch folds a batch of completed calls into the performance
// table, then extracts patterns meeting the minimum frequency threshold
// and generates insights from them.
func (s *System) UpdatePerBatch(calls []CallOutcome) []domain.Insight {
	for _, c := range calls {
		s.UpdatePerCall(c.IntentCategory, c.Strategy, c.EffectivenessScore, c.TurnsToEnd, c.Success)
	}

	patterns := make(map[string]int)
	for _, c := range calls {
		if c.Pattern != "" {
			patterns[c.Pattern]++
		}
	}

	var retained []string
	for pattern, count := range patterns {
		if count >= minPatternFrequency {
			retained = append(retained, pattern)
		}
	}

	return s.generateInsights(retained, time.Now())
}

// generateInsights produces underperforming-strategy, effective-pattern,
// and high-performing-strategy insights from the current performance
// table and the retained patterns.
func (s *System) generateInsights(retainedPatterns []string, now time.Time) []domain.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()

	var insights []domain.Insight
	for _, perf := range s.strategies {
		if perf.UsageCount < minPatternFrequency {
			continue
		}
		rate := perf.SuccessRate()
		switch {
		case rate < 0.4:
			insights = append(insights, domain.Insight{
				Category:    "underperforming_strategy",
				Description: fmt.Sprintf("%s underperforms for %s callers (success rate %.2f)", perf.Strategy, perf.IntentCategory, rate),
				Confidence:  confidenceFromSampleSize(perf.UsageCount),
				SampleSize:  perf.UsageCount,
				GeneratedAt: now,
			})
		case rate >= 0.8:
			insights = append(insights, domain.Insight{
				Category:    "high_performing_strategy",
				Description: fmt.Sprintf("%s performs well for %s callers (success rate %.2f)", perf.Strategy, perf.IntentCategory, rate),
				Confidence:  confidenceFromSampleSize(perf.UsageCount),
				SampleSize:  perf.UsageCount,
				GeneratedAt: now,
			})
		}
	}

	for _, pattern := range retainedPatterns {
		insights = append(insights, domain.Insight{
			Category:    "effective_pattern",
			Description: fmt.Sprintf("pattern %q observed at or above the retention threshold", pattern),
			Confidence:  0.75,
			SampleSize:  minPatternFrequency,
			GeneratedAt: now,
		})
	}

	return insights
}

// confidenceFromSampleSize grows confidence with sample size, capped at
// 0.95 so no insight claims certainty.
func confidenceFromSampleSize(n int) float64 {
	return math.Min(0.95, 0.5+0.05*float64(n))
}

// AppliedInsights filters insights down to those confident enough to be
// "applied" per spec.md §4.7.3.
func AppliedInsights(insights []domain.Insight) []domain.Insight {
	var applied []domain.Insight
	for _, in := range insights {
		if in.Confidence >= insightConfidenceApplied {
			applied = append(applied, in)
		}
	}
	return applied
}

// SuccessRate satisfies internal/termination.SuccessRateProvider: the
// overall success rate across every tracked strategy.
func (s *System) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var usage, success int
	for _, perf := range s.strategies {
		usage += perf.UsageCount
		success += perf.SuccessCount
	}
	if usage == 0 {
		return 1 // no data yet: assume healthy rather than triggering premature loosening
	}
	return float64(success) / float64(usage)
}

// TerminationRate satisfies internal/termination.SuccessRateProvider: the
// fraction of tracked calls that ended via a non-success outcome.
func (s *System) TerminationRate() float64 {
	rate := s.SuccessRate()
	return 1 - rate
}

func roundPerf(p domain.StrategyPerformance) domain.StrategyPerformance {
	p.AvgEffectiveness = roundTo(p.AvgEffectiveness, 4)
	p.AvgTurnsToEnd = roundTo(p.AvgTurnsToEnd, 4)
	return p
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Export returns a deterministic, byte-for-byte reproducible snapshot:
// encoding/json sorts map[string]V keys lexicographically on marshal, and
// every stored float is pre-rounded to a fixed precision, so marshaling
// the same logical state twice always yields the same bytes.
func (s *System) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := domain.LearningModel{
		Version:    snapshotVersion,
		Strategies: s.strategies,
		Thresholds: s.thresholds,
		UpdatedAt:  time.Time{}, // stamped by the caller; kept zero so re-exports of unchanged state are identical
	}
	return json.Marshal(model)
}

// Import replaces the System's state with a previously exported snapshot.
func (s *System) Import(data []byte) error {
	var model domain.LearningModel
	if err := json.Unmarshal(data, &model); err != nil {
		return fmt.Errorf("learning: import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if model.Strategies == nil {
		model.Strategies = make(map[string]domain.StrategyPerformance)
	}
	if model.Thresholds == nil {
		model.Thresholds = make(map[string]float64)
	}
	s.strategies = model.Strategies
	s.thresholds = model.Thresholds
	return nil
}
