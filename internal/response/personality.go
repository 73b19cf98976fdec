package response

import "strings"

// applyPersonality rewrites a base response to fit the caller's assigned
// personality. Rewrites are additive string transforms, not regenerations,
// so they apply equally to LLM output and template fallback output.
func applyPersonality(text string, p Personality) string {
	switch p {
	case PersonalityPolite:
		return politeSoften(text)
	case PersonalityDirect:
		return directTrim(text)
	case PersonalityHumorous:
		return humorousLeadIn(text)
	case PersonalityProfessional:
		return professionalFormalize(text)
	default:
		return text
	}
}

var hedges = []string{"kind of ", "sort of ", "I guess ", "maybe ", "I think "}

// politeSoften inserts a softener prefix when the text doesn't already
// start with one of the common polite openers.
func politeSoften(text string) string {
	lower := strings.ToLower(text)
	for _, opener := range []string{"thank", "i appreciate", "sorry"} {
		if strings.HasPrefix(lower, opener) {
			return text
		}
	}
	return "I appreciate you calling, but " + lowerFirst(text)
}

// directTrim strips hedging phrases so the response reads plainly.
func directTrim(text string) string {
	out := text
	for _, h := range hedges {
		out = strings.ReplaceAll(out, h, "")
	}
	return out
}

// humorousLeadIn prepends a light lead-in unless one is already present.
func humorousLeadIn(text string) string {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "ha") || strings.HasPrefix(lower, "funny") {
		return text
	}
	return "Ha, well — " + lowerFirst(text)
}

var formalSubstitutions = map[string]string{
	"can't":  "cannot",
	"won't":  "will not",
	"don't":  "do not",
	"isn't":  "is not",
	"I'm":    "I am",
	"it's":   "it is",
	"that's": "that is",
}

// professionalFormalize expands contractions into their formal equivalents.
func professionalFormalize(text string) string {
	out := text
	for from, to := range formalSubstitutions {
		out = strings.ReplaceAll(out, from, to)
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
