package response

import "strings"

// applyEmotionControl adjusts tone-sensitive phrasing based on the
// caller's detected emotional_tone, independent of the personality filter.
func applyEmotionControl(text, tone string) string {
	switch tone {
	case "aggressive":
		return stripHedgesKeepCalm(text)
	case "persistent":
		return removeOpeningGratitude(text)
	case "friendly":
		return prependGratitudeIfMissing(text)
	default:
		return text
	}
}

// stripHedgesKeepCalm removes softening hedges against an aggressive
// caller so the response reads level and unshaken, not defensive.
func stripHedgesKeepCalm(text string) string {
	out := text
	for _, h := range hedges {
		out = strings.ReplaceAll(out, h, "")
	}
	return out
}

var gratitudeOpeners = []string{"thank you", "thanks", "i appreciate"}

// removeOpeningGratitude strips a leading thank-you when the caller is
// persistent — repeated thanks reads as an invitation to keep pitching.
func removeOpeningGratitude(text string) string {
	lower := strings.ToLower(text)
	for _, g := range gratitudeOpeners {
		if strings.HasPrefix(lower, g) {
			rest := text[len(g):]
			rest = strings.TrimLeft(rest, ", ")
			if rest == "" {
				return text
			}
			return strings.ToUpper(rest[:1]) + rest[1:]
		}
	}
	return text
}

// prependGratitudeIfMissing adds a thank-you for a friendly caller when
// the response doesn't already open with one.
func prependGratitudeIfMissing(text string) string {
	lower := strings.ToLower(text)
	for _, g := range gratitudeOpeners {
		if strings.HasPrefix(lower, g) {
			return text
		}
	}
	return "Thank you, " + lowerFirst(text)
}
