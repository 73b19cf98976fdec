package intent

import (
	"math"
	"strings"

	"ninjaengine/internal/domain"
)

// keywordLayer scores every category as
// 0.6·keyword_match_ratio + 0.4·pattern_match_ratio, weighted by the
// category's prior, and returns the highest-scoring category.
func keywordLayer(text string, cats []compiledCategory) (layerResult, error) {
	lower := strings.ToLower(text)
	best := layerResult{intent: unknownIntent}
	bestScore := 0.0

	for _, c := range cats {
		var matchedKeywords []string
		kwHits := 0
		for _, kw := range c.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				kwHits++
				matchedKeywords = append(matchedKeywords, kw)
			}
		}
		kwRatio := ratio(kwHits, len(c.Keywords))

		patHits := 0
		for _, re := range c.compiledPatterns {
			if re.MatchString(text) {
				patHits++
			}
		}
		patRatio := ratio(patHits, len(c.compiledPatterns))

		score := (0.6*kwRatio + 0.4*patRatio) * c.Prior
		if score > bestScore {
			bestScore = score
			best = layerResult{intent: c.Name, keywords: matchedKeywords}
		}
	}

	if bestScore <= 0 {
		return layerResult{intent: unknownIntent}, nil
	}
	best.confidence = math.Min(1, 1.5*bestScore)
	return best, nil
}

func ratio(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// semanticLayer reduces the utterance to a fixed-length feature vector —
// a normalized length feature plus per-category keyword density — and
// picks the category whose configured reference vector has the highest
// cosine similarity.
func semanticLayer(text string, cats []compiledCategory) (layerResult, error) {
	features := buildFeatureVector(text, cats)

	best := layerResult{intent: unknownIntent}
	bestSim := 0.0
	for _, c := range cats {
		if len(c.ReferenceVector) != len(features) {
			continue
		}
		sim := cosineSimilarity(features, c.ReferenceVector)
		if sim > bestSim {
			bestSim = sim
			best = layerResult{intent: c.Name}
		}
	}
	if bestSim <= 0 {
		return layerResult{intent: unknownIntent}, nil
	}
	best.confidence = bestSim
	return best, nil
}

func buildFeatureVector(text string, cats []compiledCategory) []float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	wordCount := len(words)

	vec := make([]float64, 1+len(cats))
	vec[0] = math.Min(1, float64(wordCount)/30.0)

	for i, c := range cats {
		if wordCount == 0 {
			continue
		}
		hits := 0
		for _, kw := range c.Keywords {
			hits += strings.Count(lower, strings.ToLower(kw))
		}
		vec[1+i] = float64(hits) / float64(wordCount)
	}
	return vec
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// contextualLayer examines the last prior intents from a DialogueState
// snapshot. It only votes when at least 3 prior intents are available.
func contextualLayer(snapshot *domain.DialogueState) (layerResult, error) {
	if snapshot == nil || len(snapshot.IntentHistory) < 3 {
		return layerResult{intent: unknownIntent}, nil
	}

	counts := make(map[string]int)
	for _, in := range snapshot.IntentHistory {
		counts[in]++
	}
	var topIntent string
	topCount := 0
	for in, n := range counts {
		if n > topCount {
			topCount = n
			topIntent = in
		}
	}
	share := float64(topCount) / float64(len(snapshot.IntentHistory))

	if share >= 0.7 {
		return layerResult{intent: topIntent, confidence: share, contextInfluenced: true}, nil
	}
	return layerResult{intent: topIntent, confidence: 0.8 * share}, nil
}
