package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/nest/internal/logging"
	"github.com/aretw0/nest/internal/presentation/graph"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a ports.SessionEngine over HTTP/JSON.
type Server struct {
	Engine  ports.SessionEngine
	Streams *StreamManager
	Version string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// StartRequest is the body of POST /sessions. An empty ID is generated.
type StartRequest struct {
	ID string `json:"id,omitempty"`
}

// EventRequest is the body of POST /sessions/{id}/events.
type EventRequest struct {
	Event string `json:"event"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.SessionEngine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.TerminateSession)
			r.Post("/events", s.DispatchEvent)
			r.Get("/transitions", s.GetTransitions)
			r.Get("/stream", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "nest-http",
		"version": s.Version,
		"machine": s.Engine.Inspect().Key,
	})
}

// GetGraph handles the GET /graph request. ?format=mermaid returns a diagram,
// optionally highlighting the active path of ?session=ID.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	cfg := s.Engine.Inspect()
	if r.URL.Query().Get("format") != "mermaid" {
		s.writeJSON(w, http.StatusOK, cfg)
		return
	}

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		info, err := s.Engine.Snapshot(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		overlay = &graph.Overlay{Path: info.Path}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(cfg, overlay))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartSession handles the POST /sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			s.logger.Warn("StartSession: invalid request body", "err", err)
			return
		}
	}
	info, err := s.Engine.Start(r.Context(), body.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(info)
	s.writeJSON(w, http.StatusCreated, info)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.Engine.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// DispatchEvent handles the POST /sessions/{id}/events request.
func (s *Server) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("DispatchEvent: invalid request body", "err", err)
		return
	}
	event, err := domain.SanitizeEvent(body.Event)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.Engine.Dispatch(r.Context(), chi.URLParam(r, "id"), event)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(info)
	s.writeJSON(w, http.StatusOK, info)
}

// GetTransitions handles the GET /sessions/{id}/transitions request.
func (s *Server) GetTransitions(w http.ResponseWriter, r *http.Request) {
	transitions, err := s.Engine.Transitions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if transitions == nil {
		transitions = []domain.Transition{}
	}
	s.writeJSON(w, http.StatusOK, transitions)
}

// TerminateSession handles the DELETE /sessions/{id} request.
func (s *Server) TerminateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Engine.Terminate(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) broadcast(info *domain.SessionInfo) {
	payload, err := json.Marshal(info)
	if err != nil {
		s.logger.Error("failed to encode session update", "session_id", info.ID, "err", err)
		return
	}
	s.Streams.Broadcast(info.ID, string(payload))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEventNotEnabled), errors.Is(err, domain.ErrInvalidEvent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProcessTerminated):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
