package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}

// CatalogHandler serves catalog-wide statistics.
type CatalogHandler struct {
	deps CatalogQueries
}

// NewCatalogHandler creates a new catalog statistics handler.
func NewCatalogHandler(deps CatalogQueries) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandlePeriods handles GET {prefix}/stats/periods.
func (h *CatalogHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.deps.ListPeriods(r.Context())
	if err != nil {
		writeServiceError(w, Wrap("api.list_periods", err))
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

// HandleEvaluatorTypes handles GET {prefix}/stats/evaluator-types.
func (h *CatalogHandler) HandleEvaluatorTypes(w http.ResponseWriter, r *http.Request) {
	evaluatorTypes, err := h.deps.ListEvaluatorTypes(r.Context())
	if err != nil {
		writeServiceError(w, Wrap("api.list_evaluator_types", err))
		return
	}
	writeJSON(w, http.StatusOK, evaluatorTypes)
}

// HandleCategory handles GET {prefix}/stats/categories?category=&period=.
func (h *CatalogHandler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.deps.CategoryStatistics(r.Context(), q.Get("category"), q.Get("period"))
	if err != nil {
		writeServiceError(w, Wrap("api.category_statistics", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
