package intent

import "strings"

// layerWeights, fixed per spec.md §4.2.
const (
	weightKeyword = 0.3
	weightSemantic = 0.4
	weightContext  = 0.3

	// totalWeight is the fixed normalizer for fused confidence, always
	// 0.3+0.4+0.3 regardless of which layers actually voted — matching
	// _examples/original_source/services/conversation-engine/services/
	// intent_classifier.py's `sum(weights.values())`, not a partial sum of
	// only the layers that contributed.
	totalWeight = weightKeyword + weightSemantic + weightContext
)

// fuse combines up to three layer votes by weighted sum. Layers that
// errored (and so are passed in as nil) don't contribute to the
// accumulated score, but confidence is still normalized by the fixed full
// weight total so a single confident layer can't report near-1.0
// confidence on its own.
func fuse(keyword, semantic, context *layerResult) Result {
	scores := make(map[string]float64)
	voted := false
	contextInfluenced := false
	var keywordsMatched []string

	accumulate := func(r *layerResult, weight float64) {
		if r == nil || r.intent == unknownIntent || r.intent == "" {
			return
		}
		scores[r.intent] += r.confidence * weight
		voted = true
	}

	if keyword != nil && keyword.intent != unknownIntent {
		keywordsMatched = keyword.keywords
	}
	accumulate(keyword, weightKeyword)
	accumulate(semantic, weightSemantic)
	accumulate(context, weightContext)
	if context != nil {
		contextInfluenced = context.contextInfluenced
	}

	if !voted {
		return Result{Intent: unknownIntent, Confidence: 0, EmotionalTone: "neutral"}
	}

	var winner string
	best := -1.0
	for intent, score := range scores {
		if score > best {
			best = score
			winner = intent
		}
	}

	confidence := best / totalWeight
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	return Result{
		Intent:            winner,
		Confidence:        confidence,
		KeywordsMatched:   keywordsMatched,
		ContextInfluenced: contextInfluenced && context != nil && winner == context.intent,
	}
}

// emotionalTone counts matches against fixed aggressive/persistent/friendly
// lexicons and returns the category with the most hits above threshold,
// defaulting to neutral.
func emotionalTone(text string, lex EmotionalLexicons) string {
	lower := strings.ToLower(text)
	aggr := countMatches(lower, lex.Aggressive)
	pers := countMatches(lower, lex.Persistent)
	friend := countMatches(lower, lex.Friendly)

	best := lex.Threshold - 1
	tone := "neutral"
	if aggr > best {
		best = aggr
		tone = "aggressive"
	}
	if pers > best {
		best = pers
		tone = "persistent"
	}
	if friend > best {
		best = friend
		tone = "friendly"
	}
	return tone
}

func countMatches(lower string, lex []string) int {
	n := 0
	for _, w := range lex {
		if strings.Contains(lower, strings.ToLower(w)) {
			n++
		}
	}
	return n
}
