package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/conversation"
	"ninjaengine/internal/dialogue"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/learning"
	"ninjaengine/internal/llmclient"
	"ninjaengine/internal/response"
	"ninjaengine/internal/sentiment"
	"ninjaengine/internal/termination"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cache := cacheutil.NewMemory()

	classifier, err := intent.New(intent.DefaultConfig(), cache, time.Minute)
	require.NoError(t, err)

	lex := sentiment.DefaultLexicons()
	analyzer := sentiment.New(sentiment.NewLexiconScorer(lex), nil, lex, cache, time.Minute)

	llm := &llmclient.Fake{Response: llmclient.Response{Content: "Not interested, thank you."}}
	generator := response.New(llm, "test-model", cache, time.Minute)

	tracker := dialogue.New(dialogue.Config{ShardCount: 4}, nil)
	decider := termination.New(nil)
	learn := learning.New()

	manager := conversation.New(conversation.Dependencies{
		Tracker:    tracker,
		Classifier: classifier,
		Analyzer:   analyzer,
		Generator:  generator,
		Decider:    decider,
	})

	deps := Dependencies{
		Manager:    manager,
		Tracker:    tracker,
		Classifier: classifier,
		Decider:    decider,
		Learning:   learn,
	}
	return NewServer(deps, ":0", time.Second, time.Second)
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleProcessConversationReturnsResponse(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/engine/process-conversation", processConversationRequest{
		InputText: "We have a loan offer for you!",
		CallID:    "call-1",
		UserID:    "user-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp processConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Response)
	require.Equal(t, 2, resp.TurnCount, "one caller turn plus one AI turn")
}

func TestHandleProcessConversationRejectsMissingCallID(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/engine/process-conversation", processConversationRequest{
		InputText: "hello",
		UserID:    "user-1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleClassifyIntentReturnsResult(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/engine/classify-intent", classifyIntentRequest{
		Transcript: "我是银行的，有贷款需求吗",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifyIntentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Intent)
}

func TestHandleCheckTerminationUnknownCallID(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/engine/check-termination", checkTerminationRequest{CallID: "missing"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLearnAccepted(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/engine/learn", learnRequest{
		CallRecord: learnCallRecord{IntentCategory: "sales", Strategy: "gentle_decline", EffectivenessScore: 0.7, TurnCount: 3, Success: true},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandlePerformanceMetricsDefaultsHealthy(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/engine/performance-metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp performanceMetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1.0, resp.SuccessRate)
}

func TestHandleExportThenImportLearningModelRoundTrips(t *testing.T) {
	s := newTestServer(t)
	s.deps.Learning.UpdatePerCall("sales", "gentle_decline", 0.8, 3, true)

	exportRec := doRequest(s, http.MethodPost, "/engine/export-learning-model", nil)
	require.Equal(t, http.StatusOK, exportRec.Code)

	importRec := doRequest(s, http.MethodPost, "/engine/import-learning-model", importLearningModelRequest{Model: exportRec.Body.Bytes()})
	require.Equal(t, http.StatusOK, importRec.Code)
}

func TestHandleHealthzOKWithoutRedis(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
