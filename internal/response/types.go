// Package response implements the Response Generator: cache lookup, LLM
// (or template) base generation, personality/emotion rewriting, and
// post-analysis derivation of termination and stage-transition hints.
package response

import "time"

// Strategy is one of the closed set of response strategies.
type Strategy string

const (
	StrategyGentleDecline        Strategy = "gentle_decline"
	StrategyFirmDecline          Strategy = "firm_decline"
	StrategyWittyResponse        Strategy = "witty_response"
	StrategyExplainNotInterested Strategy = "explain_not_interested"
	StrategyClearRefusal         Strategy = "clear_refusal"
	StrategyDeflectWithHumor     Strategy = "deflect_with_humor"
	StrategyProfessionalResponse Strategy = "professional_response"
	StrategyFinalWarning         Strategy = "final_warning"
	StrategyImmediateHangup      Strategy = "immediate_hangup"
)

// SpeechStyle controls the soft token-length cap and max-token scaling.
type SpeechStyle string

const (
	SpeechBrief    SpeechStyle = "brief"
	SpeechNormal   SpeechStyle = "normal"
	SpeechDetailed SpeechStyle = "detailed"
	SpeechElaborate SpeechStyle = "elaborate"
)

// Personality adjusts temperature and rewrite rules.
type Personality string

const (
	PersonalityPolite       Personality = "polite"
	PersonalityDirect       Personality = "direct"
	PersonalityHumorous     Personality = "humorous"
	PersonalityProfessional Personality = "professional"
)

// speechStyleTokenCap is the soft token ceiling per style, spec.md §4.4.
var speechStyleTokenCap = map[SpeechStyle]int{
	SpeechBrief:     20,
	SpeechNormal:    40,
	SpeechDetailed:  80,
	SpeechElaborate: 120,
}

const hardCharCeiling = 500

// Input bundles everything the generator needs for one call.
type Input struct {
	Strategy       Strategy
	Stage          string
	TurnCount      int
	Personality    Personality
	SpeechStyle    SpeechStyle
	SpamCategory   string
	Turns          []TurnRef
	CallerUtterance string
	IntentConfidence float64
	EmotionalTone  string
}

// TurnRef is the minimal turn shape the generator needs from a
// DialogueState snapshot, decoupling this package from internal/domain's
// full TurnRecord.
type TurnRef struct {
	Speaker string // "caller" | "ai"
	Text    string
}

// AIResponse is the generator's output.
type AIResponse struct {
	Text             string    `json:"text"`
	Intent           string    `json:"intent,omitempty"`
	Confidence       float64   `json:"confidence"`
	EmotionalTone    string    `json:"emotional_tone"`
	Strategy         Strategy  `json:"strategy"`
	ShouldTerminate  bool      `json:"should_terminate"`
	NextStage        string    `json:"next_stage"`
	GenerationTimeMS int64     `json:"generation_time_ms"`
	Cached           bool      `json:"cached"`
	ContextHash      string    `json:"context_hash"`
	CreatedAt        time.Time `json:"-"`
}
