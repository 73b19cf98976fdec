// Package domain holds the plain data shapes shared across the dialogue
// core and post-call pipeline. Types here carry no behavior; operations on
// them live in their owning packages (internal/dialogue, internal/pipeline,
// ...), per the "model objects carrying schema and behavior" redesign flag.
package domain

import "time"

// Stage is a position in the per-call dialogue state machine.
type Stage string

const (
	StageInitial           Stage = "initial"
	StageHandlingSales     Stage = "handling_sales"
	StageHandlingLoan      Stage = "handling_loan"
	StageHandlingInvestment Stage = "handling_investment"
	StageHandlingInsurance Stage = "handling_insurance"
	StageHandlingTelecom   Stage = "handling_telecom"
	StagePoliteDecline     Stage = "polite_decline"
	StageFirmRejection     Stage = "firm_rejection"
	StageHangUpWarning     Stage = "hang_up_warning"
	StageCallEnd           Stage = "call_end"
)

// HandlingStageFor maps an intent category to its handling_* stage. ok is
// false when the category has no dedicated handling stage (e.g. "unknown").
func HandlingStageFor(category string) (Stage, bool) {
	switch category {
	case "sales":
		return StageHandlingSales, true
	case "loan_offer", "loan":
		return StageHandlingLoan, true
	case "investment_offer", "investment":
		return StageHandlingInvestment, true
	case "insurance_offer", "insurance":
		return StageHandlingInsurance, true
	case "telecom_offer", "telecom":
		return StageHandlingTelecom, true
	default:
		return "", false
	}
}

// IsHandlingStage reports whether s is one of the handling_* stages.
func IsHandlingStage(s Stage) bool {
	switch s {
	case StageHandlingSales, StageHandlingLoan, StageHandlingInvestment, StageHandlingInsurance, StageHandlingTelecom:
		return true
	default:
		return false
	}
}

// Speaker identifies who produced a TurnRecord.
type Speaker string

const (
	SpeakerCaller Speaker = "caller"
	SpeakerAI     Speaker = "ai"
)

// TurnRecord is one speaker turn. Immutable after insertion into a
// DialogueState's turn history.
type TurnRecord struct {
	Speaker         Speaker   `json:"speaker"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	Intent          string    `json:"intent,omitempty"`
	IntentConf      float64   `json:"intent_confidence,omitempty"`
	Emotion         string    `json:"emotion,omitempty"`
	EmotionConf     float64   `json:"emotion_confidence,omitempty"`
	LatencyMillis   int64     `json:"latency_ms,omitempty"`
	CacheHit        bool      `json:"cache_hit,omitempty"`
	ResponseStrategy string   `json:"response_strategy,omitempty"`
}

// DialogueState is the full per-call conversation state. One exists per
// live call id, owned by the Dialogue State Tracker.
type DialogueState struct {
	CallID            string       `json:"call_id"`
	UserID            string       `json:"user_id"`
	CallerFingerprint string       `json:"caller_fingerprint"`
	Stage             Stage        `json:"stage"`
	TurnCount         int          `json:"turn_count"`
	StartedAt         time.Time    `json:"started_at"`
	Turns             []TurnRecord `json:"turns"`
	IntentHistory     []string     `json:"intent_history"`
	EmotionHistory    []string     `json:"emotion_history"`
	KeyPoints         []string     `json:"key_points"`
	Ended             bool         `json:"ended"`
	EndReason         string       `json:"end_reason,omitempty"`
}

// Clone returns a deep copy suitable for read-only snapshot consumption by
// components other than the tracker that owns the live state.
func (d *DialogueState) Clone() *DialogueState {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Turns = append([]TurnRecord(nil), d.Turns...)
	cp.IntentHistory = append([]string(nil), d.IntentHistory...)
	cp.EmotionHistory = append([]string(nil), d.EmotionHistory...)
	cp.KeyPoints = append([]string(nil), d.KeyPoints...)
	return &cp
}

// Summary is returned by the tracker's end() operation.
type Summary struct {
	CallID     string    `json:"call_id"`
	UserID     string    `json:"user_id"`
	Stage      Stage     `json:"final_stage"`
	TurnCount  int       `json:"turn_count"`
	Duration   time.Duration `json:"duration"`
	EndReason  string    `json:"end_reason"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}
