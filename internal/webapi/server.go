// Package webapi serves the validation pipeline over HTTP for use by n8n
// HTTP Request nodes and other local callers.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	// DefaultAddr is where the serve command listens by default.
	DefaultAddr = ":8080"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Validator runs the validation pipeline for one URL.
type Validator interface {
	Validate(ctx context.Context, rawURL string) model.CompositeResult
}

// Server exposes validation and stored records over HTTP.
type Server struct {
	validator Validator
	repo      repository.RecordRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewServer creates a server. repo may be nil, in which case results are
// not persisted and the records endpoint is not mounted.
func NewServer(validator Validator, repo repository.RecordRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		validator: validator,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		if s.repo != nil {
			r.Get("/records", s.handleRecords)
		}
	})
	return r
}

// Run serves on addr until ctx is canceled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validateRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// An empty URL is a pipeline input, not a request error: it yields a
	// failed composite the same way the CLI does.
	composite := s.validator.Validate(r.Context(), req.URL)

	if s.repo != nil {
		rec := model.NewValidationRecord(&composite, target.DomainOf(composite.URLChecked), s.now())
		if err := s.repo.UnconditionalStore(r.Context(), rec); err != nil {
			s.logger.Warn("failed to store record", "url", composite.URLChecked, "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, composite.Flatten())
}

type recordsResponse struct {
	Count   int                       `json:"count"`
	Records []*model.ValidationRecord `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.RecordFilter{Domains: query["domain"]}
	if v := query.Get("passed"); v != "" {
		passed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "passed must be true or false")
			return
		}
		filter.Passed = &passed
	}
	if v := query.Get("min_score"); v != "" {
		minScore, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "min_score must be an integer")
			return
		}
		filter.MinScore = minScore
	}

	records, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list records", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	records = model.FilterRecords(records, filter)
	model.SortRecords(records, query.Get("sort"))

	if records == nil {
		records = []*model.ValidationRecord{}
	}
	s.writeJSON(w, http.StatusOK, recordsResponse{Count: len(records), Records: records})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
