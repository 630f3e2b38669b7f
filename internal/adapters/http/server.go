// Package http exposes the pipeline over a JSON API with per-session SSE
// state streaming.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halden-bio/catalyst"
	"github.com/halden-bio/catalyst/internal/logging"
	"github.com/halden-bio/catalyst/internal/runtime"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
	"github.com/halden-bio/catalyst/pkg/session"
)

// Server wires the session manager and the orchestrator to the router.
type Server struct {
	Sessions *session.Manager
	Orch     *runtime.Orchestrator
	Analyzer ports.Analyzer
	Streams  *StreamManager

	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the complete HTTP handler. The analyzer is passed
// separately from the orchestrator so execution can run outside the
// session lock.
func NewHandler(sessions *session.Manager, orch *runtime.Orchestrator, analyzer ports.Analyzer, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	server := &Server{
		Sessions: sessions,
		Orch:     orch,
		Analyzer: analyzer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/steps", server.GetSteps)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", server.CreateSession)
		r.Get("/", server.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", server.GetSession)
			r.Delete("/", server.DeleteSession)
			r.Post("/step", server.SelectStep)
			r.Put("/inputs", server.SetInputs)
			r.Post("/execute", server.Execute)
			r.Get("/events", server.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Request/response bodies --

type createSessionRequest struct {
	Smiles     string `json:"smiles,omitempty"`
	ReceptorID string `json:"receptor_id,omitempty"`
}

type selectStepRequest struct {
	Step domain.StepID `json:"step"`
}

type setInputsRequest struct {
	Smiles     string `json:"smiles"`
	ReceptorID string `json:"receptor_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	id := uuid.NewString()
	state, err := s.Sessions.LoadOrStart(r.Context(), id, body.Smiles, body.ReceptorID)
	if err != nil {
		s.logger.Error("session creation failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.logger.Info("session created", "session_id", id)
	s.writeJSON(w, http.StatusCreated, state)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.logger.Error("session listing failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectStep handles POST /sessions/{sessionID}/step.
func (s *Server) SelectStep(w http.ResponseWriter, r *http.Request) {
	var body selectStepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutateSession(w, r, func(state *domain.State) error {
		return s.Orch.SelectStep(state, body.Step)
	})
}

// SetInputs handles PUT /sessions/{sessionID}/inputs.
func (s *Server) SetInputs(w http.ResponseWriter, r *http.Request) {
	var body setInputsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutateSession(w, r, func(state *domain.State) error {
		s.Orch.SetInputs(state, body.Smiles, body.ReceptorID)
		return nil
	})
}

// mutateSession loads the session under its lock, applies fn, saves, and
// broadcasts the resulting diff.
func (s *Server) mutateSession(w http.ResponseWriter, r *http.Request, fn func(*domain.State) error) {
	id := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	var after *domain.State
	err := s.Sessions.WithLock(ctx, id, func(ctx context.Context) error {
		state, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		before := state.Clone()
		if err := fn(state); err != nil {
			return err
		}
		if err := s.Sessions.Store().Save(ctx, id, state); err != nil {
			return err
		}
		after = state.Clone()
		s.Streams.BroadcastDiff(before, after)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, after)
}

// Execute handles POST /sessions/{sessionID}/execute.
//
// The session lock is held only while state is mutated, not during the
// analysis call itself: Prepare runs under the lock, the (potentially
// slow) analyzer runs outside it, and Apply/Fail re-acquire it. The
// generation counter protects against anything that changed in between.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	var req *ports.AnalysisRequest
	err := s.Sessions.WithLock(ctx, id, func(ctx context.Context) error {
		state, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		before := state.Clone()
		req, err = s.Orch.Prepare(ctx, state)
		if err != nil {
			// Dependency failures mutate LastError; persist and stream them.
			if domain.IsDependencyError(err) {
				if saveErr := s.Sessions.Store().Save(ctx, id, state); saveErr != nil {
					return saveErr
				}
				s.Streams.BroadcastDiff(before, state)
			}
			return err
		}
		if err := s.Sessions.Store().Save(ctx, id, state); err != nil {
			return err
		}
		s.Streams.BroadcastDiff(before, state)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, analyzeErr := s.Analyzer.Analyze(ctx, *req)

	// The release phase must complete even when the client has gone away:
	// a canceled request context would fail the store writes and leave the
	// persisted running flag set forever.
	releaseCtx := context.WithoutCancel(ctx)

	var after *domain.State
	var stale bool
	err = s.Sessions.WithLock(releaseCtx, id, func(ctx context.Context) error {
		state, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		before := state.Clone()

		var opErr error
		if analyzeErr != nil {
			opErr = s.Orch.Fail(ctx, state, req, analyzeErr)
		} else {
			opErr = s.Orch.Apply(ctx, state, req, result)
		}
		switch {
		case errors.Is(opErr, domain.ErrStaleResult):
			stale = true
		case opErr != nil && analyzeErr == nil:
			// Apply rejected a non-stale result (nil payload).
			analyzeErr = opErr
		}

		if saveErr := s.Sessions.Store().Save(ctx, id, state); saveErr != nil {
			return saveErr
		}
		after = state.Clone()
		s.Streams.BroadcastDiff(before, after)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if stale {
		// The execution was superseded by an input edit mid-flight; the
		// result was discarded and the current state returned as-is.
		s.logger.Info("stale execution discarded", "session_id", id, "step", req.Step)
		s.writeJSON(w, http.StatusOK, after)
		return
	}
	if analyzeErr != nil {
		s.logger.Warn("execution failed", "session_id", id, "step", req.Step, "err", analyzeErr)
		s.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": after.LastError,
			"state": after,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, after)
}

// GetSteps handles GET /steps.
func (s *Server) GetSteps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.Catalog())
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "catalyst-http",
		"version": strings.TrimSpace(catalyst.Version),
	})
}

// SubscribeEvents handles GET /sessions/{sessionID}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	id := chi.URLParam(r, "sessionID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	s.logger.Info("SSE: client subscribed", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("store operation failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrExecutionInFlight):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownStep):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case domain.IsDependencyError(err):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrStaleResult):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
