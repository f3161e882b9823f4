package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/pipeline"
	"odoo-exporter/pkg/router"
)

// FilterPayload is the body of POST /filters
type FilterPayload struct {
	Name   string          `json:"name"`
	Domain json.RawMessage `json:"domain" swaggertype:"string"`
	Fields json.RawMessage `json:"fields" swaggertype:"string"`
}

// ListFilters returns every saved filter
// @Summary List saved filters
// @Description Get all saved filters sorted by name
// @Tags filters
// @Produce json
// @Success 200 {array} model.SavedFilter "Saved filters"
// @Failure 500 {object} ErrorResponse "Filter store failure"
// @Router /filters [get]
func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	list, err := h.Filters.List(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SaveFilter creates or replaces a saved filter
// @Summary Save filter
// @Description Store a domain and field list under a name, replacing any filter with the same name. Both are checked before saving.
// @Tags filters
// @Accept json
// @Produce json
// @Param filter body FilterPayload true "Filter"
// @Success 200 {object} model.SavedFilter "Saved filter"
// @Failure 400 {object} ErrorResponse "Malformed domain or fields"
// @Failure 500 {object} ErrorResponse "Filter store failure"
// @Router /filters [post]
func (h *Handler) SaveFilter(w http.ResponseWriter, r *http.Request) {
	var payload FilterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON payload", Kind: string(exporterrors.MalformedInput)})
		return
	}

	f := model.SavedFilter{
		Name:   strings.TrimSpace(payload.Name),
		Domain: rawText(payload.Domain),
		Fields: rawText(payload.Fields),
	}
	if f.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "filter name is required", Kind: string(exporterrors.MalformedInput)})
		return
	}
	if _, err := pipeline.ParseDomain(f.Domain); err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	if _, err := pipeline.ParseFields(f.Fields); err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}

	if err := h.Filters.Save(r.Context(), f); err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	saved, err := h.Filters.Get(r.Context(), f.Name)
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetFilter returns one saved filter
// @Summary Get saved filter
// @Tags filters
// @Produce json
// @Param name path string true "Filter name"
// @Success 200 {object} model.SavedFilter "Saved filter"
// @Failure 404 {object} ErrorResponse "Filter not found"
// @Router /filters/{name} [get]
func (h *Handler) GetFilter(w http.ResponseWriter, r *http.Request) {
	f, err := h.Filters.Get(r.Context(), router.Param(r, 0))
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFilter removes a saved filter
// @Summary Delete saved filter
// @Tags filters
// @Param name path string true "Filter name"
// @Success 204 "Deleted"
// @Failure 404 {object} ErrorResponse "Filter not found"
// @Router /filters/{name} [delete]
func (h *Handler) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.Filters.Delete(r.Context(), router.Param(r, 0)); err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: string(exporterrors.KindOf(err))})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
