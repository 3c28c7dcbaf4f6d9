package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/registry"
)

const defaultPollInterval = 500 * time.Millisecond

// Server exposes the read-only job query surface: job listings, individual
// job records, and a websocket stream of live per-stage progress. It never
// mutates the registry.
type Server struct {
	registry     *registry.Registry
	router       *chi.Mux
	upgrader     websocket.Upgrader
	pollInterval time.Duration
	logger       *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithPollInterval sets how often websocket subscribers receive progress
// checks. Default is 500ms.
func WithPollInterval(interval time.Duration) ServerOption {
	return func(s *Server) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// NewServer creates a query server over the given registry.
func NewServer(reg *registry.Registry, opts ...ServerOption) *Server {
	s := &Server{
		registry:     reg,
		router:       chi.NewRouter(),
		pollInterval: defaultPollInterval,
		logger:       slog.Default().With("component", "api"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.health)
	s.router.Get("/jobs", s.listJobs)
	s.router.Get("/jobs/{id}", s.getJob)
	s.router.Get("/ws/jobs/{id}", s.jobProgress)

	return s
}

// Router returns the HTTP handler for mounting or serving.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// listJobs returns all jobs, newest first.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"jobs": s.registry.List(),
	})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	record, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			s.respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

// jobProgress streams the job record to a websocket subscriber whenever it
// changes, closing the stream once the job reaches a terminal status.
func (s *Server) jobProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if _, err := s.registry.Get(jobID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "job_id", jobID, "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last []byte
	for {
		record, err := s.registry.Get(jobID)
		if err != nil {
			return
		}

		payload, err := json.Marshal(record)
		if err != nil {
			s.logger.Error("failed to encode job record", "job_id", jobID, "err", err)
			return
		}

		if !bytes.Equal(payload, last) {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			last = payload
		}

		if record.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
