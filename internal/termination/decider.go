package termination

import (
	"sync"
	"time"

	"ninjaengine/internal/domain"
)

// adaptationWindow bounds threshold adaptation to at most once per
// window, per spec.md §4.5's "at most once per adaptation-window"
// constraint. Ten minutes: long enough that a burst of calls completing
// together doesn't whipsaw the thresholds, short enough to react within
// a single operator shift.
const adaptationWindow = 10 * time.Minute

const thresholdStep = 1

// SuccessRateProvider is the narrow interface the Decider depends on for
// threshold adaptation, satisfied by the Learning System without coupling
// the two packages directly.
type SuccessRateProvider interface {
	SuccessRate() float64
	TerminationRate() float64
}

// Decider evaluates the termination rule table each turn and adapts its
// thresholds over time from observed success/termination rates.
type Decider struct {
	mu         sync.Mutex
	thresholds Thresholds
	provider   SuccessRateProvider
	lastAdapt  time.Time
}

// New builds a Decider with default thresholds. provider may be nil to
// disable adaptation entirely.
func New(provider SuccessRateProvider) *Decider {
	return &Decider{thresholds: DefaultThresholds(), provider: provider}
}

// Decide evaluates the ordered rule table against state and the response
// that was just produced, returning a termination Decision.
func (d *Decider) Decide(state *domain.DialogueState, responseShouldTerminate bool, responseConfidence float64, now time.Time) Decision {
	d.mu.Lock()
	th := d.thresholds
	d.mu.Unlock()

	metrics := computeMetrics(state, now, responseConfidence)

	reason, terminate := evaluateRules(metrics, th, responseShouldTerminate)
	if terminate {
		return Decision{
			Terminate:      true,
			Reason:         reason,
			FinalUtterance: utteranceFor(reason),
			Metrics:        metrics,
		}
	}

	return Decision{
		Terminate:             false,
		SuggestedContinuation: suggestContinuation(metrics),
		Metrics:               metrics,
	}
}

// evaluateRules walks the rule table in spec.md §4.5's fixed order;
// first match wins.
func evaluateRules(m Metrics, th Thresholds, explicit bool) (Reason, bool) {
	switch {
	case explicit:
		return ReasonExplicit, true
	case m.TurnCount >= th.MaxTurns:
		return ReasonMaxTurns, true
	case m.DurationSeconds >= th.MaxDurationSeconds:
		return ReasonMaxDuration, true
	case m.Persistence >= th.PersistenceLimit:
		return ReasonExcessivePersist, true
	case m.Frustration >= th.FrustrationLimit:
		return ReasonHighFrustration, true
	case m.Effectiveness < th.EffectivenessFloor && m.TurnCount > th.EffectivenessTurns:
		return ReasonIneffective, true
	default:
		return "", false
	}
}

// suggestContinuation picks a strategy-adjustment hint when no rule
// fires, per spec.md §4.5's priority order (persistence, then
// frustration, then effectiveness, else maintain).
func suggestContinuation(m Metrics) Continuation {
	switch {
	case m.Persistence > 0.6:
		return ContinueEscalateFirmness
	case m.Frustration > 0.6:
		return ContinueDeEscalate
	case m.Effectiveness < 0.5:
		return ContinueChangeApproach
	default:
		return ContinueMaintainCurrent
	}
}

// MaybeAdapt loosens or tightens thresholds by one step based on the
// provider's observed rates, at most once per adaptationWindow. Decide
// does not call it; it runs only when invoked explicitly.
func (d *Decider) MaybeAdapt(now time.Time) {
	if d.provider == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastAdapt) < adaptationWindow {
		return
	}

	successRate := d.provider.SuccessRate()
	terminationRate := d.provider.TerminationRate()

	switch {
	case successRate < 0.8:
		d.thresholds.MaxTurns += thresholdStep
		d.thresholds.PersistenceLimit = min1(d.thresholds.PersistenceLimit + 0.05)
	case terminationRate > 0.7:
		d.thresholds.MaxTurns -= thresholdStep
		if d.thresholds.MaxTurns < 1 {
			d.thresholds.MaxTurns = 1
		}
		d.thresholds.PersistenceLimit = max0(d.thresholds.PersistenceLimit - 0.05)
	default:
		return
	}
	d.lastAdapt = now
}

// Thresholds returns a copy of the Decider's current thresholds, mainly
// for observability/testing.
func (d *Decider) Thresholds() Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thresholds
}
