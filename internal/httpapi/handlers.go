package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"ninjaengine/internal/conversation"
	"ninjaengine/internal/domain"
	"ninjaengine/internal/learning"
	"ninjaengine/internal/phonefp"
	"ninjaengine/internal/store"
	"ninjaengine/internal/summary"

	"github.com/gorilla/mux"
)

// handleProcessConversation is POST /engine/process-conversation: the one
// caller-facing route that drives the Conversation Manager's per-turn flow.
func (s *Server) handleProcessConversation(w http.ResponseWriter, r *http.Request) {
	var req processConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.CallID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("call_id and user_id are required"))
		return
	}

	fingerprint := ""
	if req.CallerPhone != "" {
		fingerprint = phonefp.Fingerprint(req.CallerPhone, s.deps.PhoneSalt)
	}

	start := time.Now()
	result, err := s.deps.Manager.HandleTurn(r.Context(), conversation.TurnInput{
		CallID:            req.CallID,
		UserID:            req.UserID,
		CallerFingerprint: fingerprint,
		Text:              req.InputText,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := processConversationResponse{
		Response:         result.AIResponse.Text,
		NextState:        result.Stage,
		ShouldTerminate:  result.Terminated,
		Intent:           result.IntentResult.Intent,
		Confidence:       result.AIResponse.Confidence,
		EmotionalTone:    result.AIResponse.EmotionalTone,
		TurnCount:        0,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
	if result.Terminated {
		resp.TerminationReason = string(result.TerminationReason)
	}
	if snap := s.deps.Tracker.Snapshot(req.CallID); snap != nil {
		resp.TurnCount = snap.TurnCount
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClassifyIntent is POST /engine/classify-intent: a standalone
// classification call, outside the per-turn flow.
func (s *Server) handleClassifyIntent(w http.ResponseWriter, r *http.Request) {
	var req classifyIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("transcript is required"))
		return
	}

	start := time.Now()
	snap := s.snapshotFor(req.CallID)
	result, err := s.deps.Classifier.Classify(r.Context(), req.Transcript, snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, classifyIntentResponse{
		Result:           result,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	})
}

// handleCheckTermination is POST /engine/check-termination: runs the
// Termination Decider directly against a call's current state.
func (s *Server) handleCheckTermination(w http.ResponseWriter, r *http.Request) {
	var req checkTerminationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	state := s.deps.Tracker.Snapshot(req.CallID)
	if state == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown call_id %q", req.CallID))
		return
	}

	decision := s.deps.Decider.Decide(state, req.ResponseShouldTerminate, req.ResponseConfidence, time.Now())
	writeJSON(w, http.StatusOK, checkTerminationResponse{
		Terminate:             decision.Terminate,
		Reason:                decision.Reason,
		FinalUtterance:        decision.FinalUtterance,
		SuggestedContinuation: decision.SuggestedContinuation,
		Metrics:               decision.Metrics,
	})
}

// handleLearn is POST /engine/learn: accepted immediately, folded into
// the Learning System asynchronously, per spec.md §6.
func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	rec := req.CallRecord
	go s.deps.Learning.UpdatePerCall(rec.IntentCategory, rec.Strategy, rec.EffectivenessScore, rec.TurnCount, rec.Success)
	w.WriteHeader(http.StatusAccepted)
}

// handleBatchLearn is POST /engine/batch-learn: folds a batch of calls in
// at once and returns whatever insights cross the retention threshold.
func (s *Server) handleBatchLearn(w http.ResponseWriter, r *http.Request) {
	var req batchLearnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	outcomes := make([]learning.CallOutcome, 0, len(req.Calls))
	for _, c := range req.Calls {
		outcomes = append(outcomes, learning.CallOutcome{
			IntentCategory:     c.IntentCategory,
			Strategy:           c.Strategy,
			EffectivenessScore: c.EffectivenessScore,
			TurnsToEnd:         c.TurnCount,
			Success:            c.Success,
		})
	}
	insights := s.deps.Learning.UpdatePerBatch(outcomes)
	writeJSON(w, http.StatusOK, batchLearnResponse{Insights: insights})
}

// handlePerformanceMetrics is GET /engine/performance-metrics.
func (s *Server) handlePerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	resp := performanceMetricsResponse{
		SuccessRate:     s.deps.Learning.SuccessRate(),
		TerminationRate: s.deps.Learning.TerminationRate(),
	}
	if s.deps.Pipeline != nil && s.deps.Pipeline.Pool != nil {
		resp.ActivePipelineJobs = s.deps.Pipeline.Pool.ActiveCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConversationSummary is GET /engine/conversation-summary/{call_id}.
func (s *Server) handleConversationSummary(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["call_id"]
	if callID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("call_id is required"))
		return
	}

	state := s.deps.Tracker.Snapshot(callID)
	if state == nil && s.deps.Store != nil {
		if rec, err := s.deps.Store.GetCallRecord(r.Context(), callID); err == nil {
			state = callRecordToState(rec)
		}
	}
	if state == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown call_id %q", callID))
		return
	}

	text := ""
	if s.deps.Summary != nil {
		text = s.deps.Summary.Generate(r.Context(), summaryInputFor(state))
	}
	writeJSON(w, http.StatusOK, conversationSummaryResponse{CallID: callID, Summary: text})
}

// handleExportLearningModel is POST /engine/export-learning-model.
func (s *Server) handleExportLearningModel(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Learning.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImportLearningModel is POST /engine/import-learning-model.
func (s *Server) handleImportLearningModel(w http.ResponseWriter, r *http.Request) {
	var req importLearningModelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.deps.Learning.Import(req.Model); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleHealthz is the ambient liveness probe: pings Redis when a Redis
// client is configured. Postgres is not checked.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(r.Context()).Err(); err != nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("redis: %w", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// snapshotFor returns the live snapshot for callID, or nil when callID is
// empty or unknown — Classify tolerates a nil snapshot.
func (s *Server) snapshotFor(callID string) *domain.DialogueState {
	if callID == "" || s.deps.Tracker == nil {
		return nil
	}
	return s.deps.Tracker.Snapshot(callID)
}

// callRecordToState rebuilds just enough of a DialogueState from a
// persisted CallRecord to drive the Summary Generator for calls whose
// live in-memory state has already been evicted.
func callRecordToState(rec store.CallRecord) *domain.DialogueState {
	return &domain.DialogueState{
		CallID:            rec.CallID,
		UserID:            rec.UserID,
		CallerFingerprint: rec.CallerFingerprint,
		Stage:             domain.Stage(rec.FinalStage),
		TurnCount:         rec.TurnCount,
		StartedAt:         rec.StartedAt,
		Turns:             rec.Turns,
		Ended:             true,
		EndReason:         rec.EndReason,
	}
}

// summaryInputFor builds the Summary Generator's input from a dialogue
// state snapshot, defaulting to the comprehensive style.
func summaryInputFor(state *domain.DialogueState) summary.Input {
	return summary.Input{
		State:             state,
		TerminationReason: state.EndReason,
		Style:             summary.StyleComprehensive,
	}
}
