package response

// terminalConfidenceBoost nudges confidence up slightly for terminal
// strategies: a hang-up or final warning is a low-ambiguity decision
// compared to picking among the decline/deflect family.
const terminalConfidenceBoost = 0.05

// fallbackConfidence is reported whenever generation fell back to the
// template bank, per the deterministic-fallback contract.
const fallbackConfidence = 0.5

// blendConfidence combines a fixed base confidence in the generation
// pipeline itself with the upstream intent classifier's confidence,
// averaging the two and applying a small boost for terminal strategies.
func blendConfidence(intentConfidence float64, strategy Strategy) float64 {
	const base = 0.8
	blended := (base + intentConfidence) / 2
	if terminalStrategies[strategy] {
		blended += terminalConfidenceBoost
	}
	if blended < 0 {
		return 0
	}
	if blended > 1 {
		return 1
	}
	return blended
}
