// Package sentiment implements the Sentiment/Emotion Analyzer: a local
// scorer, a remote text-analytics backend, and a lexicon fallback, tried
// in that order until one succeeds.
package sentiment

// SentimentResult is the sentiment half of a ConversationAnalysis.
type SentimentResult struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// EmotionResult is the emotion half of a ConversationAnalysis.
type EmotionResult struct {
	Primary    string             `json:"primary"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// ConversationAnalysis is the analyzer's full output for one utterance.
type ConversationAnalysis struct {
	Sentiment             SentimentResult `json:"sentiment"`
	Emotion                EmotionResult   `json:"emotion"`
	IntentSignals          []string        `json:"intent_signals,omitempty"`
	PersistenceIndicators  []string        `json:"persistence_indicators,omitempty"`
	TerminationSignals     []string        `json:"termination_signals,omitempty"`
	EmotionalIntensity     float64         `json:"emotional_intensity"`
	StagePrediction        string          `json:"stage_prediction"`
	Source                 string          `json:"source"`
}

// Sentiment labels, a closed set.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Emotion labels, a closed set: neutral first so ties at zero matches
// (the common case) resolve to neutral under declaration-order
// tie-breaking, then Ekman's six, then dialogue-specific tones.
var emotionLabels = []string{
	"neutral", "joy", "anger", "fear", "sadness", "disgust", "surprise",
	"frustrated", "annoyed", "patient", "polite", "firm", "friendly", "dismissive", "aggressive", "confused",
}

// emotionWeights backs the emotional intensity calculation: a weighted
// sum over base-emotion scores. Dialogue-specific tones don't carry a
// weight of their own and are left out of the sum.
var emotionWeights = map[string]float64{
	"anger":    1.0,
	"disgust":  0.9,
	"fear":     0.8,
	"sadness":  0.7,
	"joy":      0.6,
	"surprise": 0.5,
	"neutral":  0,
}

// EmotionWeight exposes the base-emotion weight table to other packages
// (the Termination Decider's frustration metric walks an emotion_history
// of labels and needs the same weighting emotional intensity uses).
// Unweighted/dialogue-specific tones return 0.
func EmotionWeight(label string) float64 {
	return emotionWeights[label]
}
