package dialogue

import (
	"strings"

	"ninjaengine/internal/domain"
)

type triggerKind int

const (
	triggerNone triggerKind = iota
	triggerGoodbye
	triggerEscalation
	triggerQuestion
	triggerPersistence
)

var farewellLexicon = []string{
	"bye", "goodbye", "再见", "拜拜", "先这样", "不聊了", "挂了", "就这样吧",
}

var pitchLexicon = []string{
	"but", "however", "just hear me out", "one more thing", "听我说", "再考虑一下", "最后一次",
}

// detectedTriggers returns every trigger signal present in the turn, in
// the fixed priority order (goodbye, aggression/escalation, question,
// persistence). A signal being present doesn't guarantee it fires a
// transition — that depends on whether a rule exists for the current
// stage, resolved by nextStage below.
func detectedTriggers(stage domain.Stage, text, emotion, intentCategory string, recentIntents []string) []triggerKind {
	lower := strings.ToLower(text)
	var triggers []triggerKind

	if containsAny(lower, farewellLexicon) {
		triggers = append(triggers, triggerGoodbye)
	}

	if stage == domain.StageFirmRejection {
		if emotion == "aggressive" || emotion == "angry" || containsAny(lower, pitchLexicon) {
			triggers = append(triggers, triggerEscalation)
		}
	}

	if isQuestion(text) {
		triggers = append(triggers, triggerQuestion)
	}

	if isPersistent(intentCategory, recentIntents) {
		triggers = append(triggers, triggerPersistence)
	}

	return triggers
}

func isQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？") {
		return true // ASCII and fullwidth question marks
	}
	lower := strings.ToLower(trimmed)
	interrogatives := []string{"what", "why", "how", "when", "who", "怎么", "为什么", "什么", "吗"}
	for _, w := range interrogatives {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isPersistent reports whether intentCategory repeats across the last 3
// recorded turns (same-intent repetition, the generic persistence signal).
func isPersistent(intentCategory string, recentIntents []string) bool {
	if intentCategory == "" {
		return false
	}
	count := 0
	start := 0
	if len(recentIntents) > 3 {
		start = len(recentIntents) - 3
	}
	for _, c := range recentIntents[start:] {
		if c == intentCategory {
			count++
		}
	}
	return count >= 2
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// ruleTarget returns the transition table's target stage for (current,
// trig), and whether a rule exists at all.
func ruleTarget(current domain.Stage, trig triggerKind) (domain.Stage, bool) {
	switch trig {
	case triggerGoodbye:
		if domain.IsHandlingStage(current) || current == domain.StagePoliteDecline || current == domain.StageFirmRejection {
			return domain.StageCallEnd, true
		}
	case triggerEscalation:
		if current == domain.StageFirmRejection {
			return domain.StageHangUpWarning, true
		}
	case triggerQuestion:
		if domain.IsHandlingStage(current) {
			return domain.StagePoliteDecline, true
		}
	case triggerPersistence:
		if domain.IsHandlingStage(current) || current == domain.StagePoliteDecline {
			return domain.StageFirmRejection, true
		}
	}
	return current, false
}

// nextStage resolves the next dialogue stage for one turn: the
// hang_up_warning "any" wildcard wins outright, then each detected trigger
// is tried in priority order against the transition table, then the
// lowest-priority intent rule, then the stage is left unchanged.
func nextStage(current domain.Stage, text, emotion, intentCategory string, recentIntents []string) domain.Stage {
	if current == domain.StageHangUpWarning {
		return domain.StageCallEnd
	}

	for _, trig := range detectedTriggers(current, text, emotion, intentCategory, recentIntents) {
		if target, ok := ruleTarget(current, trig); ok {
			return target
		}
	}

	if current == domain.StageInitial {
		if next, ok := domain.HandlingStageFor(intentCategory); ok {
			return next
		}
	}

	return current
}
