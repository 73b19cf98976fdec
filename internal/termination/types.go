// Package termination implements the Termination Decider: derived
// per-turn metrics, an ordered termination-rule table, suggested
// continuation strategy when no rule fires, and threshold adaptation
// driven by observed success/termination rates.
package termination

// Reason is the closed set of termination reasons, each tied to exactly
// one rule in the ordered table.
type Reason string

const (
	ReasonExplicit         Reason = "explicit_termination"
	ReasonMaxTurns         Reason = "max_turns_exceeded"
	ReasonMaxDuration      Reason = "max_duration_exceeded"
	ReasonExcessivePersist Reason = "excessive_persistence"
	ReasonHighFrustration  Reason = "high_frustration"
	ReasonIneffective      Reason = "ineffective_responses"
)

// Continuation is suggested when no termination rule fires.
type Continuation string

const (
	ContinueEscalateFirmness Continuation = "escalate_firmness"
	ContinueDeEscalate       Continuation = "de_escalate"
	ContinueChangeApproach   Continuation = "change_approach"
	ContinueMaintainCurrent  Continuation = "maintain_current"
)

// Metrics are the per-turn derived values the rule table and
// continuation suggestion are computed from.
type Metrics struct {
	TurnCount       int
	DurationSeconds float64
	Persistence     float64
	Frustration     float64
	Effectiveness   float64
	Aggression      float64
	RepetitionRatio float64
}

// Decision is the Termination Decider's per-turn output.
type Decision struct {
	Terminate               bool
	Reason                  Reason
	FinalUtterance          string
	SuggestedContinuation   Continuation
	Metrics                 Metrics
}

// Thresholds are the tunable knobs the rule table reads; defaults match
// spec.md §4.5 and are adapted over time by SuccessRateProvider feedback.
type Thresholds struct {
	MaxTurns           int
	MaxDurationSeconds float64
	PersistenceLimit   float64
	FrustrationLimit   float64
	EffectivenessFloor float64
	EffectivenessTurns int
}

// DefaultThresholds returns the spec-default rule-table constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTurns:           8,
		MaxDurationSeconds: 180,
		PersistenceLimit:   0.8,
		FrustrationLimit:   0.9,
		EffectivenessFloor: 0.3,
		EffectivenessTurns: 4,
	}
}
