package api

import (
	"net/http"
)

// TeachersHandler serves per-teacher statistics.
type TeachersHandler struct {
	deps TeacherQueries
}

// NewTeachersHandler creates a new teachers handler.
func NewTeachersHandler(deps TeacherQueries) *TeachersHandler {
	return &TeachersHandler{deps: deps}
}

// HandleList handles GET {prefix}/teachers.
func (h *TeachersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.deps.ListTeachers(r.Context())
	if err != nil {
		writeServiceError(w, Wrap("api.list_teachers", err))
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

// HandleAverages handles GET {prefix}/teachers/{document}/averages?period=.
func (h *TeachersHandler) HandleAverages(w http.ResponseWriter, r *http.Request) {
	avg, err := h.deps.TeacherAverages(r.Context(), r.PathValue("document"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.teacher_averages", err))
		return
	}
	writeJSON(w, http.StatusOK, avg)
}

// HandleDetail handles GET {prefix}/teachers/{document}/detail?period=.
func (h *TeachersHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.deps.TeacherDetail(r.Context(), r.PathValue("document"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.teacher_detail", err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleImprovements handles GET {prefix}/teachers/{document}/improvements?period=.
func (h *TeachersHandler) HandleImprovements(w http.ResponseWriter, r *http.Request) {
	plan, err := h.deps.ImprovementPlan(r.Context(), r.PathValue("document"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.improvement_plan", err))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// HandleComparison handles GET {prefix}/teachers/{document}/comparison?period=.
func (h *TeachersHandler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.deps.CompareEvaluators(r.Context(), r.PathValue("document"), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.compare_evaluators", err))
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
