// Package summary implements the Summary Generator: builds a prompt from
// call metadata, formatted conversation, sub-analysis summaries, and
// effectiveness metrics, then emits a single natural-language block via
// an LLM call with a deterministic template-based fallback.
package summary

import (
	"context"
	"fmt"
	"strings"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/llmclient"
	"ninjaengine/internal/observability"
	"ninjaengine/internal/util"
)

// maxConversationTokens bounds how much of a call's turn-by-turn transcript
// goes into the prompt; long calls drop their earliest turns rather than
// risk the provider truncating the summary instructions off the end.
const maxConversationTokens = 4000

// Style selects the prompt template and token cap.
type Style string

const (
	StyleBrief         Style = "brief"
	StyleComprehensive Style = "comprehensive"
	StyleDetailed      Style = "detailed"
)

// styleTokenCap mirrors the response package's speech-style cap table:
// brief is tightest, detailed is the most generous.
var styleTokenCap = map[Style]int{
	StyleBrief:         60,
	StyleComprehensive: 200,
	StyleDetailed:      350,
}

// Input bundles everything the prompt needs.
type Input struct {
	State             *domain.DialogueState
	IntentCategory    string
	EffectivenessScore float64
	SubScores         map[string]float64
	TerminationReason string
	Style             Style
}

// Generator produces a natural-language call summary.
type Generator struct {
	llm   llmclient.Provider
	model string
}

// New builds a Generator. llm may be nil, in which case Generate always
// uses the template fallback.
func New(llm llmclient.Provider, model string) *Generator {
	return &Generator{llm: llm, model: model}
}

// Generate returns a summary string, falling back to a deterministic
// template on any LLM failure or empty response.
func (g *Generator) Generate(ctx context.Context, in Input) string {
	if g.llm == nil {
		return templateSummary(in)
	}

	req := llmclient.Request{
		Model:       g.model,
		Messages:    buildMessages(ctx, in),
		Temperature: 0.5,
		MaxTokens:   tokenCap(in.Style),
		TopP:        1,
	}

	resp, err := g.llm.Complete(ctx, req)
	if err != nil || resp.Content == "" {
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("summary LLM backend failed, using template fallback")
		}
		return templateSummary(in)
	}
	return resp.Content
}

func tokenCap(style Style) int {
	if cap, ok := styleTokenCap[style]; ok {
		return cap
	}
	return styleTokenCap[StyleComprehensive]
}

func buildMessages(ctx context.Context, in Input) []llmclient.Message {
	var b strings.Builder
	b.WriteString("Summarize this nuisance-call handling session for an analytics reviewer. ")
	b.WriteString(fmt.Sprintf("Style: %s. ", in.Style))
	b.WriteString(fmt.Sprintf("Spam category: %s. Termination reason: %s. Effectiveness score: %.2f. ",
		in.IntentCategory, in.TerminationReason, in.EffectivenessScore))
	b.WriteString("Conversation:\n")
	b.WriteString(formatConversation(ctx, in.State))
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: "You write terse, factual call summaries for a spam-call analytics dashboard."},
		{Role: llmclient.RoleUser, Content: b.String()},
	}
}

// formatConversation renders turns oldest-to-newest, dropping the earliest
// turns first if the rendered transcript would exceed maxConversationTokens.
func formatConversation(ctx context.Context, state *domain.DialogueState) string {
	if state == nil {
		return ""
	}
	lines := make([]string, len(state.Turns))
	for i, t := range state.Turns {
		lines[i] = fmt.Sprintf("%s: %s", t.Speaker, t.Text)
	}

	start := 0
	for {
		total := util.CountTokens(strings.Join(lines[start:], "\n"))
		if total <= maxConversationTokens || start >= len(lines)-1 {
			break
		}
		start++
	}
	if start > 0 {
		observability.LoggerWithTrace(ctx).Warn().
			Int("dropped_turns", start).
			Msg("summary prompt truncated oldest turns to fit token budget")
	}

	var b strings.Builder
	for _, line := range lines[start:] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// templateSummary builds a deterministic summary from the same inputs,
// used whenever the LLM path fails.
func templateSummary(in Input) string {
	turnCount := 0
	if in.State != nil {
		turnCount = in.State.TurnCount
	}
	return fmt.Sprintf(
		"Call handled a %s contact over %d turns, ending due to %s. Effectiveness score: %.2f.",
		categoryOrGeneric(in.IntentCategory), turnCount, reasonOrGeneric(in.TerminationReason), in.EffectivenessScore,
	)
}

func categoryOrGeneric(category string) string {
	if category == "" {
		return "nuisance"
	}
	return category
}

func reasonOrGeneric(reason string) string {
	if reason == "" {
		return "call completion"
	}
	return reason
}
