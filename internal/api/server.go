// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves evidence computations over HTTP as JSON.
//
// Routes:
//
//	GET  /healthz                          repository reachability
//	POST /api/results                      verdicts for a query key
//	POST /api/sources/{source}/findings    detail view of one source
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pdiddy/relational-matrix/internal/evidence"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Pinger reports whether the evidence repository is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP front end of an evidence engine.
type Server struct {
	engine *evidence.Engine
	health Pinger
	cfg    types.ServerConfig
	logger *slog.Logger
	router chi.Router
}

// NewServer builds the router. health may be nil when the repository has
// nothing to ping.
func NewServer(engine *evidence.Engine, health Pinger, cfg types.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{engine: engine, health: health, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/results", s.handleResults)
		r.Post("/sources/{source}/findings", s.handleFindings)
	})

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// variableRequest is a variable as submitted by the selection form.
type variableRequest struct {
	Selection string `json:"selection"`
	Other     string `json:"other,omitempty"`
}

// queryRequest is the body of the query endpoints.
type queryRequest struct {
	Level       string          `json:"level"`
	Dependent   variableRequest `json:"dependent"`
	Independent variableRequest `json:"independent"`
}

func (q queryRequest) key() types.QueryKey {
	return types.QueryKey{
		Level:       types.Level(q.Level),
		Dependent:   types.ParseVariable(q.Dependent.Selection, q.Dependent.Other),
		Independent: types.ParseVariable(q.Independent.Selection, q.Independent.Other),
	}
}

type resultsResponse struct {
	QueryID string             `json:"query_id"`
	Results types.QueryResults `json:"results"`
}

type findingsResponse struct {
	QueryID string          `json:"query_id"`
	Detail  evidence.Detail `json:"detail"`
}

type errorResponse struct {
	Error   string `json:"error"`
	QueryID string `json:"query_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	queryID := uuid.NewString()

	req, err := decodeQuery(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), QueryID: queryID})
		return
	}

	results, err := s.engine.ComputeSourceResults(r.Context(), req.key())
	if err != nil {
		s.fail(w, queryID, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{QueryID: queryID, Results: results})
}

func (s *Server) handleFindings(w http.ResponseWriter, r *http.Request) {
	queryID := uuid.NewString()

	src, err := types.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		s.fail(w, queryID, err)
		return
	}

	req, err := decodeQuery(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), QueryID: queryID})
		return
	}

	detail, err := s.engine.SourceDetail(r.Context(), req.key(), src)
	if err != nil {
		s.fail(w, queryID, err)
		return
	}
	writeJSON(w, http.StatusOK, findingsResponse{QueryID: queryID, Detail: detail})
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (queryRequest, error) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return queryRequest{}, fmt.Errorf("decoding request body: %w", err)
	}
	return req, nil
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, queryID string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("query failed", "query_id", queryID, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), QueryID: queryID})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidQueryKey), errors.Is(err, types.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Repository errors wrap the request's context error.
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrRepositoryUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
