package response

import (
	"fmt"
	"strings"

	"ninjaengine/internal/llmclient"
)

const maxPromptTurns = 6

var stopSequences = []string{"\n\n", "USER:", "AI:"}

// buildSystemMessage derives the system prompt from personality,
// speech-style, stage, and turn-count.
func buildSystemMessage(in Input) string {
	var b strings.Builder
	b.WriteString("You are answering a phone call on behalf of the called party. ")
	b.WriteString(fmt.Sprintf("Your personality is %s and your speech style is %s. ", in.Personality, in.SpeechStyle))
	b.WriteString(fmt.Sprintf("The conversation is currently at stage %q after %d turns. ", in.Stage, in.TurnCount))
	b.WriteString("Keep the response natural, brief, and aligned with the chosen strategy. ")
	b.WriteString(fmt.Sprintf("Strategy: %s.", in.Strategy))
	return b.String()
}

// buildMessages assembles the system message, the last ≤6 turns as
// role-tagged messages, and the current caller utterance.
func buildMessages(in Input) []llmclient.Message {
	messages := []llmclient.Message{{Role: llmclient.RoleSystem, Content: buildSystemMessage(in)}}

	turns := in.Turns
	if len(turns) > maxPromptTurns {
		turns = turns[len(turns)-maxPromptTurns:]
	}
	for _, t := range turns {
		role := llmclient.RoleUser
		if t.Speaker == "ai" {
			role = llmclient.RoleAssistant
		}
		messages = append(messages, llmclient.Message{Role: role, Content: t.Text})
	}

	messages = append(messages, llmclient.Message{Role: llmclient.RoleUser, Content: in.CallerUtterance})
	return messages
}

// temperatureFor derives temperature from personality: humorous +0.2,
// professional -0.2, others unchanged from the 0.7 base.
func temperatureFor(p Personality) float64 {
	const base = 0.7
	switch p {
	case PersonalityHumorous:
		return base + 0.2
	case PersonalityProfessional:
		return base - 0.2
	default:
		return base
	}
}

// maxTokensFor derives the max-token cap from speech style. The cap table
// already encodes brief-halves/detailed-doubles relative to the normal
// (40-token) base: brief=20, normal=40, detailed=80, elaborate=120.
func maxTokensFor(style SpeechStyle) int {
	if cap, ok := speechStyleTokenCap[style]; ok {
		return cap
	}
	return speechStyleTokenCap[SpeechNormal]
}
