package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
)

func newTestTracker() *Tracker {
	return New(Config{ShardCount: 4, SnapshotTTL: time.Hour, Persist: true}, cacheutil.NewMemory())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	tr := newTestTracker()
	a := tr.GetOrCreate("call-1", "user-1", "fp-1")
	b := tr.GetOrCreate("call-1", "user-1", "fp-1")
	require.Same(t, a, b)
}

func TestUpdateTransitionsIntoHandlingStage(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker()
	tr.GetOrCreate("call-1", "user-1", "fp-1")

	st, err := tr.Update(ctx, "call-1", domain.SpeakerCaller, "I have a great loan offer for you", "loan_offer", 0.9, "neutral", 0.8)
	require.NoError(t, err)
	require.Equal(t, domain.StageHandlingLoan, st.Stage)
}

func TestGoodbyeDominatesFromHandlingStage(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker()
	tr.GetOrCreate("call-1", "user-1", "fp-1")
	_, err := tr.Update(ctx, "call-1", domain.SpeakerCaller, "loan offer", "loan_offer", 0.9, "neutral", 0.5)
	require.NoError(t, err)

	st, err := tr.Update(ctx, "call-1", domain.SpeakerCaller, "ok bye", "loan_offer", 0.9, "neutral", 0.5)
	require.NoError(t, err)
	require.Equal(t, domain.StageCallEnd, st.Stage)
}

func TestPersistenceMovesToFirmRejection(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker()
	tr.GetOrCreate("call-1", "user-1", "fp-1")

	for i := 0; i < 3; i++ {
		_, err := tr.Update(ctx, "call-1", domain.SpeakerCaller, "another loan pitch", "loan_offer", 0.9, "neutral", 0.5)
		require.NoError(t, err)
	}
	st := tr.Snapshot("call-1")
	require.Equal(t, domain.StageFirmRejection, st.Stage)
}

func TestUpdateAfterEndFailsClosed(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker()
	tr.GetOrCreate("call-1", "user-1", "fp-1")
	_, err := tr.End(ctx, "call-1", "caller_hangup")
	require.NoError(t, err)

	_, err = tr.Update(ctx, "call-1", domain.SpeakerCaller, "hello?", "sales", 0.5, "neutral", 0.5)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrStateClosed))
}

func TestHangUpWarningAlwaysEndsCall(t *testing.T) {
	require.Equal(t, domain.StageCallEnd, nextStage(domain.StageHangUpWarning, "anything at all", "neutral", "sales", nil))
}

func TestUnknownIntentAtInitialStaysInitial(t *testing.T) {
	require.Equal(t, domain.StageInitial, nextStage(domain.StageInitial, "just checking in", "neutral", "unknown", nil))
}
