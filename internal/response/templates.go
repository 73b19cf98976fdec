package response

// templateBank maps (stage, spam_category) to a fallback response. It
// MUST produce a non-empty string for any (stage, category) pair, so
// unmatched combinations fall through to a generic-but-specific template
// rather than an empty lookup.
var templateBank = map[string]map[string]string{
	"handling_sales": {
		"sales": "Thanks, but I'm not interested in any offers right now.",
		"":      "I appreciate the call, but I'm not interested.",
	},
	"handling_loan": {
		"loan_offer": "I don't need a loan at the moment, but thank you.",
		"":           "I'm not looking for financing right now.",
	},
	"handling_investment": {
		"investment_offer": "I'm not interested in investment opportunities, thanks.",
		"":                 "That's not something I'm looking into.",
	},
	"handling_insurance": {
		"insurance_offer": "I already have insurance coverage I'm happy with.",
		"":                "I'll pass on that, thanks.",
	},
	"handling_telecom": {
		"telecom_offer": "I'm satisfied with my current phone plan.",
		"":              "I don't need to change my plan, thanks.",
	},
	"polite_decline": {
		"": "Thanks again, but I really must decline.",
	},
	"firm_rejection": {
		"": "I've said I'm not interested. Please don't call again.",
	},
	"hang_up_warning": {
		"": "I'm going to end this call now.",
	},
	"call_end": {
		"": "Goodbye.",
	},
}

// templateFor looks up a fallback response for (stage, category), falling
// back first to the stage's default entry, then to a generic template
// that is always non-empty.
func templateFor(stage, category string) string {
	if byStage, ok := templateBank[stage]; ok {
		if text, ok := byStage[category]; ok && text != "" {
			return text
		}
		if text, ok := byStage[""]; ok && text != "" {
			return text
		}
	}
	return "I'm not interested, thank you for calling."
}
