package api

import (
	"net/http"
)

// ReportsHandler serves printable reports.
type ReportsHandler struct {
	deps ReportProvider
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportProvider) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleReport handles GET {prefix}/teachers/{document}/report?period=.
func (h *ReportsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.TeacherReport(r.Context(), r.PathValue("document"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.teacher_report", err))
		return
	}
	writeFile(w, f)
}

// HandleExport handles GET {prefix}/teachers/export?period=. A full report
// queue answers 429 so clients can retry later.
func (h *ReportsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.ExportReports(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.export_reports", err))
		return
	}
	writeFile(w, f)
}

// AdminHandler serves maintenance operations.
type AdminHandler struct {
	deps CatalogManager
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps CatalogManager) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// HandleReload handles POST {prefix}/admin/reload. The previous catalog
// keeps serving when the reload fails.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	info, err := h.deps.Reload(r.Context())
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrReload, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
