package sentiment

import "context"

// Scorer is the "local model" backend contract. Ready reports whether the
// backend can currently serve requests — the REDESIGN FLAG replacing a
// "warmed" flag read directly by request code: callers gate on Ready()
// once, here, rather than threading a warmed bool through every call site.
type Scorer interface {
	Ready() bool
	Score(ctx context.Context, text string) (EmotionResult, SentimentResult, error)
}

// LexiconScorer is the local backend used in this deployment: a
// keyword-density heuristic standing in for a loaded ML model. It is
// always Ready(), which is why the true lexicon-fallback tier (tier 3,
// lexiconFallbackScore) is rarely reached in practice — it exists for the
// case where even this lightweight scoring errors.
type LexiconScorer struct {
	lex Lexicons
}

// NewLexiconScorer builds a Scorer over lex.
func NewLexiconScorer(lex Lexicons) *LexiconScorer {
	return &LexiconScorer{lex: lex}
}

func (s *LexiconScorer) Ready() bool { return true }

// Score runs off the caller's goroutine via a buffered result channel, so
// a slow scorer can be abandoned on context cancellation without leaking
// the computation's effect on the caller's control flow (it still leaks
// the goroutine itself if the scoring never returns, same as any
// cooperative-cancellation backend).
func (s *LexiconScorer) Score(ctx context.Context, text string) (EmotionResult, SentimentResult, error) {
	type result struct {
		emotion   EmotionResult
		sentiment SentimentResult
	}
	ch := make(chan result, 1)

	go func() {
		emotion := lexiconFallbackScore(text, s.lex)
		ch <- result{emotion: emotion, sentiment: sentimentFromEmotion(emotion)}
	}()

	select {
	case <-ctx.Done():
		return EmotionResult{}, SentimentResult{}, ctx.Err()
	case r := <-ch:
		return r.emotion, r.sentiment, nil
	}
}

// sentimentFromEmotion derives a coarse sentiment label/score from the
// emotion distribution: positive emotions (joy, friendly, patient, polite)
// vs negative (anger, fear, sadness, disgust, frustrated, annoyed, firm,
// dismissive, aggressive) vs neutral/confused/surprise.
func sentimentFromEmotion(e EmotionResult) SentimentResult {
	positive := []string{"joy", "friendly", "patient", "polite"}
	negative := []string{"anger", "fear", "sadness", "disgust", "frustrated", "annoyed", "firm", "dismissive", "aggressive"}

	var posScore, negScore float64
	for _, l := range positive {
		posScore += e.Scores[l]
	}
	for _, l := range negative {
		negScore += e.Scores[l]
	}
	neutralScore := e.Scores["neutral"] + e.Scores["confused"] + e.Scores["surprise"]

	scores := map[string]float64{
		SentimentPositive: posScore,
		SentimentNegative: negScore,
		SentimentNeutral:  neutralScore,
	}

	label := SentimentNeutral
	best := scores[SentimentNeutral]
	if posScore > best {
		best = posScore
		label = SentimentPositive
	}
	if negScore > best {
		best = negScore
		label = SentimentNegative
	}

	return SentimentResult{Label: label, Confidence: clamp01(best), Scores: scores}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
