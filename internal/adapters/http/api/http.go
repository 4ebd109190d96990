// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/teacheval/internal/domain/types"
	"github.com/okian/teacheval/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrefix is the path prefix of the business routes.
const DefaultPrefix = "/api/v1"

// TeacherQueries answers per-teacher questions.
type TeacherQueries interface {
	ListTeachers(ctx context.Context) ([]types.TeacherListItem, error)
	TeacherAverages(ctx context.Context, document, period string) (types.TeacherAverages, error)
	TeacherDetail(ctx context.Context, document, period string) (types.TeacherDetail, error)
	ImprovementPlan(ctx context.Context, document, period string) (types.ImprovementPlan, error)
	CompareEvaluators(ctx context.Context, document, period string) (types.EvaluatorComparison, error)
}

// CatalogQueries answers questions about the catalog as a whole.
type CatalogQueries interface {
	ListPeriods(ctx context.Context) ([]types.PeriodListItem, error)
	ListEvaluatorTypes(ctx context.Context) ([]types.EvaluatorTypeListItem, error)
	CategoryStatistics(ctx context.Context, category, period string) (types.CategoryStatistics, error)
}

// ReportProvider renders downloadable reports.
type ReportProvider interface {
	TeacherReport(ctx context.Context, document, period string) (types.ReportFile, error)
	ExportReports(ctx context.Context, period string) (types.ReportFile, error)
}

// CatalogManager exposes and replaces the catalog snapshot.
type CatalogManager interface {
	CatalogInfo(ctx context.Context) (types.CatalogInfo, error)
	Reload(ctx context.Context) (types.CatalogInfo, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TeacherQueries
	CatalogQueries
	ReportProvider
	CatalogManager
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	prefix  string
	version string

	rootHandler     *RootHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	teachersHandler *TeachersHandler
	catalogHandler  *CatalogHandler
	reportsHandler  *ReportsHandler
	adminHandler    *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{prefix: DefaultPrefix, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	s.rootHandler = NewRootHandler(s.version, s.prefix)
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.teachersHandler = NewTeachersHandler(deps)
	s.catalogHandler = NewCatalogHandler(deps)
	s.reportsHandler = NewReportsHandler(deps)
	s.adminHandler = NewAdminHandler(deps)
	return s
}

// Prefix returns the path prefix of the business routes.
func (s *Server) Prefix() string { return s.prefix }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	p := s.prefix

	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	// Export is registered before the {document} routes for readability; the
	// patterns do not overlap.
	mux.HandleFunc("GET "+p+"/teachers", MetricsMiddleware(s.teachersHandler.HandleList, "teachers"))
	mux.HandleFunc("GET "+p+"/teachers/export", MetricsMiddleware(s.reportsHandler.HandleExport, "teachers_export"))
	mux.HandleFunc("GET "+p+"/teachers/{document}/averages", MetricsMiddleware(s.teachersHandler.HandleAverages, "teacher_averages"))
	mux.HandleFunc("GET "+p+"/teachers/{document}/detail", MetricsMiddleware(s.teachersHandler.HandleDetail, "teacher_detail"))
	mux.HandleFunc("GET "+p+"/teachers/{document}/improvements", MetricsMiddleware(s.teachersHandler.HandleImprovements, "teacher_improvements"))
	mux.HandleFunc("GET "+p+"/teachers/{document}/comparison", MetricsMiddleware(s.teachersHandler.HandleComparison, "teacher_comparison"))
	mux.HandleFunc("GET "+p+"/teachers/{document}/report", MetricsMiddleware(s.reportsHandler.HandleReport, "teacher_report"))

	mux.HandleFunc("GET "+p+"/stats/periods", MetricsMiddleware(s.catalogHandler.HandlePeriods, "stats_periods"))
	mux.HandleFunc("GET "+p+"/stats/evaluator-types", MetricsMiddleware(s.catalogHandler.HandleEvaluatorTypes, "stats_evaluator_types"))
	mux.HandleFunc("GET "+p+"/stats/categories", MetricsMiddleware(s.catalogHandler.HandleCategory, "stats_categories"))

	mux.HandleFunc("POST "+p+"/admin/reload", MetricsMiddleware(s.adminHandler.HandleReload, "admin_reload"))

	// Anything else answers with a JSON 404.
	mux.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleNotFound, "unmatched"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError picks the status from the error itself.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// writeFile sends a rendered report as an attachment.
func writeFile(w http.ResponseWriter, f types.ReportFile) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Content)
}

func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
