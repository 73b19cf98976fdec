// Package intent implements the three-layer intent classifier: keyword,
// semantic, and contextual layers fused by weighted vote.
package intent

// Result is the classifier's output for one utterance.
type Result struct {
	Intent            string   `json:"intent"`
	Confidence        float64  `json:"confidence"`
	SubCategory       string   `json:"sub_category,omitempty"`
	EmotionalTone     string   `json:"emotional_tone"`
	KeywordsMatched   []string `json:"keywords_matched,omitempty"`
	ContextInfluenced bool     `json:"context_influenced"`
}

const unknownIntent = "unknown"

// layerResult is one layer's provisional vote before fusion.
type layerResult struct {
	intent            string
	confidence        float64
	keywords          []string
	contextInfluenced bool
}
