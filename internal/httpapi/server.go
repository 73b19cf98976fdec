// Package httpapi exposes the Conversation Manager, Termination Decider,
// and Learning System over HTTP, the boundary-only surface spec.md §6
// names but leaves unimplemented. Routed with gorilla/mux, instrumented
// with otelhttp.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ninjaengine/internal/conversation"
	"ninjaengine/internal/dialogue"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/learning"
	"ninjaengine/internal/observability"
	"ninjaengine/internal/pipeline"
	"ninjaengine/internal/store"
	"ninjaengine/internal/summary"
	"ninjaengine/internal/termination"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dependencies bundles everything the HTTP boundary needs, per the
// DI-bundle-over-singleton requirement.
type Dependencies struct {
	Manager    *conversation.Manager
	Tracker    *dialogue.Tracker
	Classifier *intent.Classifier
	Decider    *termination.Decider
	Learning   *learning.System
	Summary    *summary.Generator
	Pipeline   *pipeline.Pipeline
	Store      *store.Store
	Redis      *redis.Client
	PhoneSalt  string
}

// Server wraps a gorilla/mux router with the routes and middleware spec.md
// §6 names, plus an ambient /healthz.
type Server struct {
	router *mux.Router
	deps   Dependencies
	server *http.Server
}

// NewServer builds a Server. addr is the listen address ("host:port").
func NewServer(deps Dependencies, addr string, readTimeout, writeTimeout time.Duration) *Server {
	s := &Server{router: mux.NewRouter(), deps: deps}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(s.router, "ninjaengine.httpapi"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/engine").Subrouter()
	api.HandleFunc("/process-conversation", s.handleProcessConversation).Methods(http.MethodPost)
	api.HandleFunc("/classify-intent", s.handleClassifyIntent).Methods(http.MethodPost)
	api.HandleFunc("/check-termination", s.handleCheckTermination).Methods(http.MethodPost)
	api.HandleFunc("/learn", s.handleLearn).Methods(http.MethodPost)
	api.HandleFunc("/batch-learn", s.handleBatchLearn).Methods(http.MethodPost)
	api.HandleFunc("/performance-metrics", s.handlePerformanceMetrics).Methods(http.MethodGet)
	api.HandleFunc("/conversation-summary/{call_id}", s.handleConversationSummary).Methods(http.MethodGet)
	api.HandleFunc("/export-learning-model", s.handleExportLearningModel).Methods(http.MethodPost)
	api.HandleFunc("/import-learning-model", s.handleImportLearningModel).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.router.Use(s.loggingMiddleware)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		observability.LoggerWithTrace(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Start serves until the server stops, blocking the calling goroutine.
// It returns nil after Shutdown, otherwise the listen error.
func (s *Server) Start() error {
	ln := s.server.Addr
	observability.LoggerWithTrace(context.Background()).Info().Str("addr", ln).Msg("httpapi listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish, bounded by ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
