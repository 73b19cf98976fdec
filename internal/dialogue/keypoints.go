package dialogue

import (
	"strings"
	"unicode/utf8"
)

// categoryMarkers holds category-specific marker words used to extract a
// key point on first occurrence in a turn's text.
var categoryMarkers = map[string][]string{
	"loan_offer":       {"interest rate", "term", "monthly payment", "amount", "利率", "期限", "额度"},
	"investment_offer": {"return", "yield", "rate of return", "收益", "回报率"},
	"insurance_offer":  {"premium", "coverage", "deductible", "保费", "保额"},
	"sales":            {"discount", "price", "offer", "优惠", "价格"},
	"telecom_offer":    {"plan", "data", "minutes", "套餐", "流量"},
}

const keyPointWindow = 20

// extractKeyPoint scans text for the first category-specific marker and
// returns a window of at most keyPointWindow characters around the match.
// Returns "", false when no marker is found.
func extractKeyPoint(category, text string) (string, bool) {
	markers, ok := categoryMarkers[category]
	if !ok {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, marker := range markers {
		idx := strings.Index(lower, strings.ToLower(marker))
		if idx < 0 {
			continue
		}
		return window(text, utf8.RuneCountInString(lower[:idx]), utf8.RuneCountInString(marker)), true
	}
	return "", false
}

func window(text string, matchStart, matchLen int) string {
	runes := []rune(text)
	start := matchStart - (keyPointWindow-matchLen)/2
	if start < 0 {
		start = 0
	}
	end := start + keyPointWindow
	if end > len(runes) {
		end = len(runes)
		start = end - keyPointWindow
		if start < 0 {
			start = 0
		}
	}
	return strings.TrimSpace(string(runes[start:end]))
}
