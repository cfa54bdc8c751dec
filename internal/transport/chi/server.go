// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

// Response headers describing how a search was served.
const (
	HeaderDegraded   = "X-Search-Degraded"
	HeaderExtraction = "X-Entity-Extraction"
	HeaderFallback   = "X-Fallback-Entities"
)

const maxBodyBytes = 64 << 10

// SearchService runs the query-understanding pipeline.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) result.Outcome
	Understand(ctx context.Context, req *request.Request) searchuc.Understanding
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        SearchService
	health        HealthService
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
	defaultLimit  int
	maxLimit      int
}

// Option configures a Server.
type Option func(*Server)

// WithLimits sets the page size used when a request omits limit and the
// ceiling requests are clamped to.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 && maxLimit <= request.MaxLimit {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 && defaultLimit <= s.maxLimit {
			s.defaultLimit = defaultLimit
		}
	}
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthService, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		search:       search,
		health:       health,
		validate:     validator.New(),
		logger:       logger,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
			sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady),
			sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, CodeUnavailable),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.Search)
	r.Post("/api/v1/search/understand", s.Understand)
	r.Get("/api/v1/search/suggest", s.Suggest)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	ctx, trace := domain.NewContextWithExtractionTrace(r.Context())
	outcome := s.search.Search(ctx, &req)

	setExtractionHeaders(w, trace)
	if outcome.IsDegraded() {
		w.Header().Set(HeaderDegraded, "true")
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(&outcome))
}

// Understand handles POST /api/v1/search/understand.
func (s *Server) Understand(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	ctx, trace := domain.NewContextWithExtractionTrace(r.Context())
	u := s.search.Understand(ctx, &req)

	setExtractionHeaders(w, trace)
	writeJSON(w, http.StatusOK, understandResponseFrom(u))
}

// Suggest handles GET /api/v1/search/suggest?prefix=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if len(prefix) > request.MaxQueryLength {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("prefix too long (max %d bytes)", request.MaxQueryLength))
		return
	}

	suggestions, err := s.search.Autocomplete(r.Context(), prefix)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (request.Request, bool) {
	var body SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return request.Request{}, false
	}

	if err := s.validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return request.Request{}, false
	}

	limit := body.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, s.maxLimit)

	req, err := request.New(body.RawQuery, body.user(), limit, body.Offset)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
		return request.Request{}, false
	}
	return req, true
}

// validationMessage lists the failing JSON fields without echoing values.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func setExtractionHeaders(w http.ResponseWriter, trace *domain.ExtractionTrace) {
	switch {
	case trace.Failed:
		w.Header().Set(HeaderExtraction, "failed")
	case trace.Cached:
		w.Header().Set(HeaderExtraction, "cached")
	}
	if trace.FallbackEntities > 0 {
		w.Header().Set(HeaderFallback, strconv.Itoa(trace.FallbackEntities))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message. Validation failures keep
// their detail since they only describe the caller's own input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrIndexNotReady,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
