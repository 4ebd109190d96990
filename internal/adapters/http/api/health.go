package api

import (
	"errors"
	"net/http"

	"github.com/okian/teacheval/internal/adapters/repository"
	"github.com/okian/teacheval/internal/domain/types"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	catalog CatalogManager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(catalog CatalogManager) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

type healthResponse struct {
	Status  string             `json:"status"`
	Catalog *types.CatalogInfo `json:"catalog,omitempty"`
}

// HandleHealth handles GET /healthz requests. The service is healthy once a
// catalog has been published.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := h.catalog.CatalogInfo(r.Context())
	switch {
	case errors.Is(err, repository.ErrNotLoaded):
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
	case err != nil:
		writeServiceError(w, Wrap("api.healthz", err))
	default:
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Catalog: &info})
	}
}

// RootHandler describes the service and answers unknown paths.
type RootHandler struct {
	info rootResponse
}

type rootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	API     string `json:"api"`
	Docs    string `json:"docs"`
	Metrics string `json:"metrics"`
}

// NewRootHandler creates a new root handler.
func NewRootHandler(version, prefix string) *RootHandler {
	return &RootHandler{info: rootResponse{
		Service: "teacheval",
		Version: version,
		API:     prefix + "/",
		Docs:    "/api-docs",
		Metrics: "/metrics",
	}}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// HandleNotFound answers every unmatched route.
func (h *RootHandler) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeServiceError(w, NewKind("api.route", ErrRouteNotFound))
}
