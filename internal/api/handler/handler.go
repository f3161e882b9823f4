package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/filters"
	"odoo-exporter/internal/pipeline"
	"odoo-exporter/pkg/utils"
)

// Handler serves the export, download and filter endpoints. Job history
// lives in the store package.
type Handler struct {
	Runner  *pipeline.Runner
	Filters filters.Store
	Output  *utils.OutputManager
}

func New(runner *pipeline.Runner, store filters.Store, output *utils.OutputManager) *Handler {
	if output == nil {
		output = runner.Output
	}
	return &Handler{Runner: runner, Filters: store, Output: output}
}

// ErrorResponse is the body of every failed export or filter request
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	JobID     string `json:"jobId,omitempty"`
	Collected int    `json:"collected,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind onto the HTTP status reported to the client
func statusFor(err error) int {
	if errors.Is(err, filters.ErrNotFound) {
		return http.StatusNotFound
	}
	switch exporterrors.KindOf(err) {
	case exporterrors.MalformedInput:
		return http.StatusBadRequest
	case exporterrors.Authentication:
		return http.StatusUnauthorized
	case exporterrors.Fetch, exporterrors.Resolution:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// rawText turns a body value that may be a JSON string or any other JSON
// value into the text the tolerant parser expects.
func rawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

// singleSegment rejects wildcard values that span several path segments
func singleSegment(v string) bool {
	return v != "" && !strings.Contains(v, "/")
}
