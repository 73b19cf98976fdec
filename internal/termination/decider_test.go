package termination

import (
	"testing"
	"time"

	"ninjaengine/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	success     float64
	termination float64
}

func (f fakeProvider) SuccessRate() float64     { return f.success }
func (f fakeProvider) TerminationRate() float64 { return f.termination }

func newState(turnCount int, stage domain.Stage, startedAgo time.Duration, now time.Time) *domain.DialogueState {
	return &domain.DialogueState{
		CallID:    "call-1",
		Stage:     stage,
		TurnCount: turnCount,
		StartedAt: now.Add(-startedAgo),
	}
}

func TestExplicitRuleWinsFirst(t *testing.T) {
	d := New(nil)
	now := time.Now()
	state := newState(1, domain.StageInitial, time.Second, now)
	decision := d.Decide(state, true, 0.9, now)
	require.True(t, decision.Terminate)
	require.Equal(t, ReasonExplicit, decision.Reason)
}

func TestMaxTurnsRule(t *testing.T) {
	d := New(nil)
	now := time.Now()
	state := newState(8, domain.StageHandlingSales, time.Second, now)
	decision := d.Decide(state, false, 0.9, now)
	require.True(t, decision.Terminate)
	require.Equal(t, ReasonMaxTurns, decision.Reason)
}

func TestMaxDurationRule(t *testing.T) {
	d := New(nil)
	now := time.Now()
	state := newState(1, domain.StageHandlingSales, 181*time.Second, now)
	decision := d.Decide(state, false, 0.9, now)
	require.True(t, decision.Terminate)
	require.Equal(t, ReasonMaxDuration, decision.Reason)
}

func TestNoRuleFiresSuggestsContinuation(t *testing.T) {
	d := New(nil)
	now := time.Now()
	state := newState(1, domain.StageHandlingSales, time.Second, now)
	decision := d.Decide(state, false, 0.9, now)
	require.False(t, decision.Terminate)
	require.NotEmpty(t, decision.SuggestedContinuation)
}

func TestIneffectiveRuleRequiresTurnsPastFour(t *testing.T) {
	d := New(nil)
	now := time.Now()
	state := newState(3, domain.StageInitial, time.Second, now)
	decision := d.Decide(state, false, 0.0, now)
	require.False(t, decision.Terminate, "effectiveness low but turn_count not yet past 4")
}

func TestRuleOrderPersistenceBeforeFrustration(t *testing.T) {
	// Force both persistence and frustration thresholds past their limits;
	// persistence must win since it is evaluated first.
	th := DefaultThresholds()
	reason, terminate := evaluateRules(Metrics{Persistence: 0.9, Frustration: 0.95}, th, false)
	require.True(t, terminate)
	require.Equal(t, ReasonExcessivePersist, reason)
}

func TestMaybeAdaptLoosensOnLowSuccessRate(t *testing.T) {
	provider := fakeProvider{success: 0.5, termination: 0.1}
	d := New(provider)
	before := d.Thresholds()

	now := time.Now()
	d.MaybeAdapt(now)
	after := d.Thresholds()
	require.Greater(t, after.MaxTurns, before.MaxTurns)
}

func TestMaybeAdaptSkipsWithinWindow(t *testing.T) {
	provider := fakeProvider{success: 0.5, termination: 0.1}
	d := New(provider)

	now := time.Now()
	d.MaybeAdapt(now)
	afterFirst := d.Thresholds()

	d.MaybeAdapt(now.Add(time.Minute))
	afterSecond := d.Thresholds()
	require.Equal(t, afterFirst, afterSecond, "adaptation must not fire twice within the window")
}

func TestUtteranceForKnownReason(t *testing.T) {
	require.Contains(t, utteranceFor(ReasonExcessivePersist), "do not call again")
}

func TestRepetitionRatioAllUnique(t *testing.T) {
	require.Equal(t, 0.0, repetitionRatio([]string{"a", "b", "c"}))
}

func TestRepetitionRatioAllSame(t *testing.T) {
	ratio := repetitionRatio([]string{"a", "a", "a"})
	require.InDelta(t, 2.0/3.0, ratio, 0.001)
}
