package conversation

import (
	"context"
	"testing"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/dialogue"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/llmclient"
	"ninjaengine/internal/response"
	"ninjaengine/internal/sentiment"
	"ninjaengine/internal/termination"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, llmResponse string) *Manager {
	t.Helper()
	cache := cacheutil.NewMemory()

	classifier, err := intent.New(intent.DefaultConfig(), cache, time.Minute)
	require.NoError(t, err)

	lex := sentiment.DefaultLexicons()
	analyzer := sentiment.New(sentiment.NewLexiconScorer(lex), nil, lex, cache, time.Minute)

	llm := &llmclient.Fake{Response: llmclient.Response{Content: llmResponse}}
	generator := response.New(llm, "test-model", cache, time.Minute)

	tracker := dialogue.New(dialogue.Config{ShardCount: 4}, nil)
	decider := termination.New(nil)

	return New(Dependencies{
		Tracker:    tracker,
		Classifier: classifier,
		Analyzer:   analyzer,
		Generator:  generator,
		Decider:    decider,
	})
}

func TestHandleTurnProducesResponse(t *testing.T) {
	m := newTestManager(t, "Thanks, I'm not interested.")
	result, err := m.HandleTurn(context.Background(), TurnInput{
		CallID: "call-1",
		Text:   "We have a great loan offer for you!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AIResponse.Text)
	require.False(t, result.Terminated)
}

func TestHandleTurnTerminatesPastMaxTurns(t *testing.T) {
	m := newTestManager(t, "Not interested.")
	ctx := context.Background()

	var last TurnResult
	for i := 0; i < 9; i++ {
		r, err := m.HandleTurn(ctx, TurnInput{CallID: "call-2", Text: "Another pitch about loans."})
		require.NoError(t, err)
		last = r
		if last.Terminated {
			break
		}
	}
	require.True(t, last.Terminated)
	require.Equal(t, termination.ReasonMaxTurns, last.TerminationReason)
}

func TestSelectStrategyFinalWarningOverride(t *testing.T) {
	table := DefaultStrategyTable()
	s := selectStrategy(table, "handling_sales", response.PersonalityPolite, 9, "neutral")
	require.Equal(t, response.StrategyFinalWarning, s)
}

func TestSelectStrategyFirmDeclineOnAggression(t *testing.T) {
	table := DefaultStrategyTable()
	s := selectStrategy(table, "handling_sales", response.PersonalityPolite, 6, "aggressive")
	require.Equal(t, response.StrategyFirmDecline, s)
}

func TestSelectStrategyFallsBackForUnmappedStage(t *testing.T) {
	table := DefaultStrategyTable()
	s := selectStrategy(table, "some_unknown_stage", response.PersonalityPolite, 1, "neutral")
	require.Equal(t, response.StrategyExplainNotInterested, s)
}
