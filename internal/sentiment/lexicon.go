package sentiment

import "strings"

// Lexicons holds the fixed keyword sets the fallback backend and the
// persistence/termination/stage signal extractors scan against.
type Lexicons struct {
	Emotion     map[string][]string
	Persistence []string
	Termination []string
	Stage       []stageRule
	IntentSignal map[string][]string
}

type stageRule struct {
	Stage    string
	Keywords []string
}

// DefaultLexicons is the built-in fixed lexicon set.
func DefaultLexicons() Lexicons {
	return Lexicons{
		Emotion: map[string][]string{
			"joy":         {"great", "happy", "glad", "太好了", "开心"},
			"anger":       {"angry", "furious", "pissed", "生气", "愤怒"},
			"fear":        {"worried", "scared", "afraid", "担心", "害怕"},
			"sadness":     {"sad", "disappointed", "难过", "失望"},
			"disgust":     {"disgusting", "gross", "恶心"},
			"surprise":    {"wow", "really?", "surprised", "惊讶"},
			"neutral":     {"ok", "fine", "alright", "好的"},
			"frustrated":  {"frustrating", "ridiculous", "够了", "烦"},
			"annoyed":     {"annoying", "stop calling", "别打了"},
			"patient":     {"no rush", "take your time", "不着急"},
			"polite":      {"please", "thank you", "谢谢", "麻烦"},
			"firm":        {"not interested", "no thanks", "不需要", "不感兴趣"},
			"friendly":    {"nice to talk", "appreciate", "很高兴"},
			"dismissive":  {"whatever", "don't care", "无所谓"},
			"aggressive":  {"shut up", "get lost", "滚", "别烦我"},
			"confused":    {"what do you mean", "i don't understand", "不明白", "什么意思"},
		},
		Persistence: []string{"again", "one more thing", "just listen", "再说一次", "再考虑一下"},
		Termination: []string{"hang up", "goodbye", "stop calling", "挂了", "再见", "别再打了"},
		Stage: []stageRule{
			{Stage: "opening", Keywords: []string{"hello", "hi there", "您好", "你好"}},
			{Stage: "presentation", Keywords: []string{"offer", "introduce", "介绍", "推荐"}},
			{Stage: "objection", Keywords: []string{"not interested", "no thanks", "不需要", "不感兴趣"}},
			{Stage: "closing", Keywords: []string{"sign up", "confirm", "确认", "办理"}},
			{Stage: "termination", Keywords: []string{"goodbye", "hang up", "再见", "挂了"}},
		},
		IntentSignal: map[string][]string{
			"price_sensitive": {"price", "cost", "how much", "多少钱", "费用"},
			"urgency":         {"today only", "limited time", "right now", "立即", "马上"},
			"trust_concern":   {"scam", "fraud", "诈骗", "骗"},
		},
	}
}

func matchedKeywords(lower string, lex []string) []string {
	var out []string
	for _, kw := range lex {
		if strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return out
}

func persistenceIndicators(text string, lex Lexicons) []string {
	return matchedKeywords(strings.ToLower(text), lex.Persistence)
}

func terminationSignals(text string, lex Lexicons) []string {
	return matchedKeywords(strings.ToLower(text), lex.Termination)
}

func intentSignals(text string, lex Lexicons) []string {
	lower := strings.ToLower(text)
	var signals []string
	for name, kws := range lex.IntentSignal {
		if len(matchedKeywords(lower, kws)) > 0 {
			signals = append(signals, name)
		}
	}
	return signals
}

// stagePrediction returns the first matching stage rule in declaration
// order, or "unknown".
func stagePrediction(text string, lex Lexicons) string {
	lower := strings.ToLower(text)
	for _, rule := range lex.Stage {
		if len(matchedKeywords(lower, rule.Keywords)) > 0 {
			return rule.Stage
		}
	}
	return "unknown"
}

// emotionalIntensity is the weighted sum over emotion scores using the
// fixed per-base-emotion weights; dialogue-specific tones don't carry
// their own weight and are excluded from the sum.
func emotionalIntensity(scores map[string]float64) float64 {
	var sum float64
	for label, weight := range emotionWeights {
		sum += scores[label] * weight
	}
	return sum
}

// lexiconFallbackScore implements the literal spec formula: count matches
// per emotion label, score = min(1, 0.3+0.2*matches), winner tie-broken
// by declaration order in emotionLabels.
func lexiconFallbackScore(text string, lex Lexicons) EmotionResult {
	lower := strings.ToLower(text)
	scores := make(map[string]float64, len(emotionLabels))

	for _, label := range emotionLabels {
		matches := len(matchedKeywords(lower, lex.Emotion[label]))
		score := 0.0
		if matches > 0 {
			score = 0.3 + 0.2*float64(matches)
		}
		if score > 1 {
			score = 1
		}
		scores[label] = score
	}

	primary := "neutral"
	best := -1.0
	for _, label := range emotionLabels {
		if scores[label] > best {
			best = scores[label]
			primary = label
		}
	}

	return EmotionResult{Primary: primary, Confidence: best, Scores: scores}
}
