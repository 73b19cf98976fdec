package domain

import "time"

// AnalysisResult is the output of the post-call analysis pipeline for a
// single completed call: effectiveness score, summary, and derived
// learning signals.
type AnalysisResult struct {
	CallID            string             `json:"call_id"`
	UserID            string             `json:"user_id"`
	CallerFingerprint string             `json:"caller_fingerprint"`
	IntentCategory    string             `json:"intent_category"`
	EffectivenessScore float64           `json:"effectiveness_score"`
	SubScores         map[string]float64 `json:"sub_scores"`
	Summary           string             `json:"summary"`
	KeyPoints         []string           `json:"key_points"`
	TerminationReason string             `json:"termination_reason"`
	DurationSeconds   float64            `json:"duration_seconds"`
	TurnCount         int                `json:"turn_count"`
	CreatedAt         time.Time          `json:"created_at"`
}

// StrategyPerformance is a running aggregate of how well one response
// strategy has performed against one intent category.
type StrategyPerformance struct {
	IntentCategory string  `json:"intent_category"`
	Strategy       string  `json:"strategy"`
	UsageCount     int     `json:"usage_count"`
	SuccessCount   int     `json:"success_count"`
	AvgEffectiveness float64 `json:"avg_effectiveness"`
	AvgTurnsToEnd  float64 `json:"avg_turns_to_end"`
}

// SuccessRate returns SuccessCount/UsageCount, or 0 when never used.
func (s StrategyPerformance) SuccessRate() float64 {
	if s.UsageCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.UsageCount)
}

// LearningModel is the full exportable/importable state of the learning
// system: per-(intent,strategy) performance plus adapted thresholds. Export
// must be a deterministic byte-for-byte reproducible snapshot.
type LearningModel struct {
	Version     int                             `json:"version"`
	Strategies  map[string]StrategyPerformance  `json:"strategies"`
	Thresholds  map[string]float64              `json:"thresholds"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// Insight is a human-readable pattern surfaced by the learning system
// (e.g. "firm_rejection outperforms polite_decline for loan_offer callers").
type Insight struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	SampleSize  int       `json:"sample_size"`
	GeneratedAt time.Time `json:"generated_at"`
}
