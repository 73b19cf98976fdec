package termination

// finalUtterances is a fixed mapping of termination reason to the exact
// closing line spoken to the caller.
var finalUtterances = map[Reason]string{
	ReasonExplicit:         "Goodbye.",
	ReasonMaxTurns:         "I need to end this call now. Goodbye.",
	ReasonMaxDuration:      "I've given this call enough time. Goodbye.",
	ReasonExcessivePersist: "I have made myself clear; please do not call again. Goodbye.",
	ReasonHighFrustration:  "I'm ending this call now. Goodbye.",
	ReasonIneffective:      "This isn't productive. Goodbye.",
}

func utteranceFor(reason Reason) string {
	if text, ok := finalUtterances[reason]; ok {
		return text
	}
	return "Goodbye."
}
