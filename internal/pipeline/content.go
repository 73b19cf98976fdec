package pipeline

import "ninjaengine/internal/domain"

// ContentAnalysis is the content-analysis leg of full_analysis: derived
// entirely from the call's own turn history and key points, no external
// calls. It classifies which spam category dominated the call and
// surfaces the key points the dialogue state tracker already extracted.
type ContentAnalysis struct {
	DominantCategory string   `json:"dominant_category"`
	KeyPoints        []string `json:"key_points"`
	CallerTurnCount  int      `json:"caller_turn_count"`
}

// analyzeContent derives a ContentAnalysis from a completed call's
// DialogueState, using its IntentHistory, KeyPoints and caller turns.
func analyzeContent(state *domain.DialogueState) ContentAnalysis {
	return ContentAnalysis{
		DominantCategory: dominantIntent(state.IntentHistory),
		KeyPoints:        state.KeyPoints,
		CallerTurnCount:  countSpeaker(state, domain.SpeakerCaller),
	}
}

func dominantIntent(history []string) string {
	if len(history) == 0 {
		return "unknown"
	}
	counts := make(map[string]int, len(history))
	for _, h := range history {
		counts[h]++
	}
	best, bestCount := "unknown", 0
	for intent, count := range counts {
		if count > bestCount {
			best, bestCount = intent, count
		}
	}
	return best
}

func countSpeaker(state *domain.DialogueState, speaker domain.Speaker) int {
	var n int
	for _, t := range state.Turns {
		if t.Speaker == speaker {
			n++
		}
	}
	return n
}
