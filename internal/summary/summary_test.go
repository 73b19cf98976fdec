package summary

import (
	"context"
	"testing"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/llmclient"

	"github.com/stretchr/testify/require"
)

func testInput() Input {
	return Input{
		State: &domain.DialogueState{
			CallID:    "call-1",
			TurnCount: 2,
			StartedAt: time.Now(),
			Turns: []domain.TurnRecord{
				{Speaker: domain.SpeakerCaller, Text: "Loan offer!"},
				{Speaker: domain.SpeakerAI, Text: "Not interested, thanks."},
			},
		},
		IntentCategory:    "loan_offer",
		EffectivenessScore: 0.8,
		TerminationReason: "explicit_termination",
		Style:             StyleBrief,
	}
}

func TestGenerateUsesLLMWhenAvailable(t *testing.T) {
	llm := &llmclient.Fake{Response: llmclient.Response{Content: "Caller pitched a loan; agent declined politely."}}
	gen := New(llm, "test-model")
	out := gen.Generate(context.Background(), testInput())
	require.Equal(t, "Caller pitched a loan; agent declined politely.", out)
}

func TestGenerateFallsBackToTemplateOnError(t *testing.T) {
	llm := &llmclient.Fake{Err: context.DeadlineExceeded}
	gen := New(llm, "test-model")
	out := gen.Generate(context.Background(), testInput())
	require.Contains(t, out, "loan_offer")
	require.Contains(t, out, "explicit_termination")
}

func TestGenerateNilLLMUsesTemplate(t *testing.T) {
	gen := New(nil, "")
	out := gen.Generate(context.Background(), testInput())
	require.NotEmpty(t, out)
}

func TestTemplateSummaryHandlesMissingFields(t *testing.T) {
	out := templateSummary(Input{State: &domain.DialogueState{}})
	require.Contains(t, out, "nuisance")
	require.Contains(t, out, "call completion")
}
