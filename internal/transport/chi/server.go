package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
	"github.com/kailas-cloud/noveldex/internal/metrics"
	healthuc "github.com/kailas-cloud/noveldex/internal/usecase/health"
)

const noResultsMessage = "no novels match the current filters"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Browser runs browse pipeline passes.
type Browser interface {
	Browse(ctx context.Context, q query.Query) (view.ResultView, error)
	Genres(ctx context.Context) ([]string, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the browse API over chi.
type Server struct {
	browse        Browser
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(browse Browser, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		browse: browse,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDataSource, http.StatusServiceUnavailable, ErrorCodeDataSourceUnavailable),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeBadRequest),
		invalidPageHandler(logger),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/novels", s.ListNovels)
	r.Get("/genres", s.ListGenres)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// ListNovels handles GET /novels.
func (s *Server) ListNovels(w http.ResponseWriter, r *http.Request) {
	params, err := bindBrowseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	f, err := query.NewFilter(deref(params.Genre), deref(params.Keyword), deref(params.MinScore))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	pageNum := 1
	if params.Page != nil {
		pageNum = *params.Page
	}

	v, err := s.browse.Browse(r.Context(), query.New(f, pageNum))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := browseToResponse(v)
	switch {
	case v.Empty():
		metrics.ObserveBrowse("empty")
	case v.Degraded():
		metrics.ObserveBrowse("degraded")
	default:
		metrics.ObserveBrowse("ok")
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListGenres handles GET /genres.
func (s *Server) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.browse.Genres(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenresResponse{Genres: genres})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func bindBrowseParams(r *http.Request) (browseParams, error) {
	var p browseParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "genre", q, &p.Genre); err != nil {
		return p, err //nolint:wrapcheck // message is client-facing as is
	}
	if err := runtime.BindQueryParameter("form", true, false, "keyword", q, &p.Keyword); err != nil {
		return p, err //nolint:wrapcheck // message is client-facing as is
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_score", q, &p.MinScore); err != nil {
		return p, err //nolint:wrapcheck // message is client-facing as is
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, err //nolint:wrapcheck // message is client-facing as is
	}
	return p, nil
}

func browseToResponse(v view.ResultView) BrowseResponse {
	items := make([]NovelItem, len(v.Rows))
	for i, row := range v.Rows {
		items[i] = NovelItem{
			ID:       row.ID,
			Title:    row.Title,
			Genre:    row.Genre,
			Score:    row.Score,
			Length:   row.Length,
			Keywords: row.Keywords,
		}
		if !row.LastUpdate.IsZero() {
			t := row.LastUpdate
			items[i].LastUpdate = &t
		}
		if row.HasDetail {
			syn := row.Synopsis
			items[i].Synopsis = &syn
		}
	}

	resp := BrowseResponse{
		Items:      items,
		Total:      v.Total,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		PageSize:   v.PageSize,
		Empty:      v.Empty(),
	}
	if v.Empty() {
		resp.Message = noResultsMessage
	}
	if v.Degraded() {
		resp.Warning = "synopses are temporarily unavailable: " + safeDomainMessage(v.DetailErr)
	}
	return resp
}

// WriteNotFound writes the JSON 404 body for unknown routes.
func WriteNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDataSource,
		domain.ErrInvalidQuery,
		domain.ErrInvalidPage,
		domain.ErrInvalidPageSize,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if s == domain.ErrInvalidQuery {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidPageHandler treats a paginator range error as a server bug: pages are
// clamped before pagination, so reaching it means the contract was broken.
func invalidPageHandler(logger *zap.Logger) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, domain.ErrInvalidPage) && !errors.Is(err, domain.ErrInvalidPageSize) {
			return false
		}
		logger.Error("pagination contract violated", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
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
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
