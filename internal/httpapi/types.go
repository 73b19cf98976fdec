package httpapi

import (
	"ninjaengine/internal/domain"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/termination"
)

// errorBody is the shape returned on any non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// processConversationRequest is POST /engine/process-conversation's body.
type processConversationRequest struct {
	InputText    string            `json:"input_text"`
	CallID       string            `json:"call_id"`
	UserID       string            `json:"user_id"`
	CallerPhone  string            `json:"caller_phone,omitempty"`
	UserProfile  *userProfileInput `json:"user_profile,omitempty"`
	Context      map[string]any    `json:"context,omitempty"`
}

type userProfileInput struct {
	Personality string `json:"personality,omitempty"`
	SpeechStyle string `json:"speech_style,omitempty"`
}

// processConversationResponse is POST /engine/process-conversation's
// success body, matching spec.md §6 field-for-field.
type processConversationResponse struct {
	Response          string  `json:"response"`
	NextState         string  `json:"next_state"`
	ShouldTerminate   bool    `json:"should_terminate"`
	TerminationReason string  `json:"termination_reason,omitempty"`
	Intent            string  `json:"intent"`
	Confidence        float64 `json:"confidence"`
	EmotionalTone     string  `json:"emotional_tone"`
	TurnCount         int     `json:"turn_count"`
	ProcessingTimeMS  int64   `json:"processing_time_ms"`
}

// classifyIntentRequest is POST /engine/classify-intent's body.
type classifyIntentRequest struct {
	Transcript string         `json:"transcript"`
	CallID     string         `json:"call_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

type classifyIntentResponse struct {
	intent.Result
	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

// checkTerminationRequest mirrors the Termination Decider's own inputs.
type checkTerminationRequest struct {
	CallID                  string  `json:"call_id"`
	ResponseShouldTerminate bool    `json:"response_should_terminate"`
	ResponseConfidence      float64 `json:"response_confidence"`
}

type checkTerminationResponse struct {
	Terminate             bool                     `json:"terminate"`
	Reason                termination.Reason       `json:"reason,omitempty"`
	FinalUtterance        string                   `json:"final_utterance,omitempty"`
	SuggestedContinuation termination.Continuation `json:"suggested_continuation,omitempty"`
	Metrics               termination.Metrics      `json:"metrics"`
}

// learnRequest is POST /engine/learn's body: a single call's outcome.
type learnRequest struct {
	CallRecord learnCallRecord `json:"call_record"`
}

type learnCallRecord struct {
	CallID             string  `json:"call_id"`
	IntentCategory     string  `json:"intent_category"`
	Strategy           string  `json:"strategy"`
	EffectivenessScore float64 `json:"effectiveness_score"`
	TurnCount          int     `json:"turn_count"`
	Success            bool    `json:"success"`
}

// batchLearnRequest is POST /engine/batch-learn's body.
type batchLearnRequest struct {
	Calls []learnCallRecord `json:"calls"`
}

type batchLearnResponse struct {
	Insights []domain.Insight `json:"insights"`
}

type performanceMetricsResponse struct {
	SuccessRate        float64 `json:"success_rate"`
	TerminationRate    float64 `json:"termination_rate"`
	ActivePipelineJobs int     `json:"active_pipeline_jobs"`
}

type conversationSummaryResponse struct {
	CallID  string `json:"call_id"`
	Summary string `json:"summary"`
}

type importLearningModelRequest struct {
	Model []byte `json:"model"`
}
