package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/logging"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/pipeline"
	"odoo-exporter/internal/store"
	"odoo-exporter/pkg/router"
	"odoo-exporter/pkg/utils"
)

// ExportPayload is the body of POST /exports. Domain and fields may be JSON
// values or the text a user typed, e.g. "[('state','=','open')]".
type ExportPayload struct {
	URL        string          `json:"url"`
	Database   string          `json:"database"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	Model      string          `json:"model"`
	Domain     json.RawMessage `json:"domain" swaggertype:"string"`
	Fields     json.RawMessage `json:"fields" swaggertype:"string"`
	BatchSize  int             `json:"batch_size,omitempty"`
	Strategy   string          `json:"strategy,omitempty"`
	FileName   string          `json:"file_name,omitempty"`
	FilterName string          `json:"filter_name,omitempty"`
	Timeout    string          `json:"timeout,omitempty"` // e.g. "10m", bounded by the server's job timeout
}

// request resolves a saved filter when one is named and parses the query
func (h *Handler) request(ctx context.Context, p ExportPayload) (model.ExportRequest, error) {
	domainText, fieldsText := rawText(p.Domain), rawText(p.Fields)

	if p.FilterName != "" && (domainText == "" || fieldsText == "") {
		if h.Filters == nil {
			return model.ExportRequest{}, exporterrors.New(exporterrors.FilterStore, "no filter store configured")
		}
		saved, err := h.Filters.Get(ctx, p.FilterName)
		if err != nil {
			return model.ExportRequest{}, err
		}
		if domainText == "" {
			domainText = saved.Domain
		}
		if fieldsText == "" {
			fieldsText = saved.Fields
		}
	}

	domain, err := pipeline.ParseDomain(domainText)
	if err != nil {
		return model.ExportRequest{}, err
	}
	fields, err := pipeline.ParseFields(fieldsText)
	if err != nil {
		return model.ExportRequest{}, err
	}

	return model.ExportRequest{
		Credentials: model.Credentials{
			URL:      strings.TrimRight(strings.TrimSpace(p.URL), "/"),
			Database: strings.TrimSpace(p.Database),
			Username: strings.TrimSpace(p.Username),
			Password: p.Password,
		},
		Query:      model.QuerySpec{Model: strings.TrimSpace(p.Model), Domain: domain, Fields: fields},
		BatchSize:  p.BatchSize,
		Strategy:   model.FetchStrategy(p.Strategy),
		FileName:   p.FileName,
		FilterName: p.FilterName,
	}, nil
}

// CreateExport runs an export and returns its result
// @Summary Run an export
// @Description Authenticate, fetch every matching record, resolve relational labels and write the spreadsheet. The request blocks until the file is written.
// @Tags exports
// @Accept json
// @Produce json
// @Param export body ExportPayload true "Connection, model, domain and fields"
// @Success 200 {object} model.ExportResult "Export completed or no records matched"
// @Failure 400 {object} ErrorResponse "Malformed domain, fields or connection data"
// @Failure 401 {object} ErrorResponse "Authentication failed"
// @Failure 404 {object} ErrorResponse "Saved filter not found"
// @Failure 502 {object} ErrorResponse "Backend failed while fetching or resolving"
// @Failure 500 {object} ErrorResponse "Spreadsheet could not be written"
// @Router /exports [post]
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var payload ExportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON payload", Kind: string(exporterrors.MalformedInput)})
		return
	}

	req, err := h.request(r.Context(), payload)
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{
			Error: logging.MaskSecret(err.Error(), payload.Password),
			Kind:  string(exporterrors.KindOf(err)),
		})
		return
	}

	jobID := uuid.New().String()
	job := model.ExportJob{
		ID:         jobID,
		Model:      req.Query.Model,
		URL:        req.URL,
		Database:   req.Database,
		Username:   req.Username,
		Domain:     req.Query.Domain,
		Fields:     req.Query.Fields,
		FilterName: req.FilterName,
		Status:     model.StatusPending,
	}
	if err := store.SaveJob(job); err != nil {
		log.Printf("[api] ❌ failed to save job %s: %v", jobID, err)
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if d := utils.ParseDuration(payload.Timeout, 0); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	started := time.Now()
	result, err := h.Runner.Run(ctx, jobID, req, nil)
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{
			Error:     logging.MaskSecret(err.Error(), req.Password),
			Kind:      string(exporterrors.KindOf(err)),
			JobID:     jobID,
			Collected: exporterrors.CollectedOf(err),
		})
		return
	}

	log.Printf("[api] job %s %s in %v", jobID, result.Status, time.Since(started).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, result)
}

// ListExports retrieves the job history
// @Summary List exports
// @Description Get every export job with its status, newest first
// @Tags exports
// @Produce json
// @Success 200 {array} model.ExportJob "Export jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch exports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetExport retrieves one job
// @Summary Get export
// @Description Get one export job, including its stage metrics once finished
// @Tags exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.ExportJob "Export job"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /exports/{id} [get]
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	jobID := router.Param(r, 0)
	if !singleSegment(jobID) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	job, err := store.GetJob(jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch export", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetExportErrors retrieves the errors recorded for a job
// @Summary Get export errors
// @Description Retrieve the errors recorded while the export ran. Messages never contain the password.
// @Tags exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} model.JobError "Export errors"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /exports/{id}/errors [get]
func (h *Handler) GetExportErrors(w http.ResponseWriter, r *http.Request) {
	jobID := router.Param(r, 0)
	if _, err := store.GetJob(jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	jobErrors, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobErrors)
}

// DeleteExport removes a job, its errors and its output directory
// @Summary Delete export
// @Description Delete an export job and the files it wrote
// @Tags exports
// @Param id path string true "Job ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /exports/{id} [delete]
func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	jobID := router.Param(r, 0)
	if !singleSegment(jobID) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	err := store.DeleteJob(jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete export", http.StatusInternalServerError)
		return
	}
	if err := h.Output.RemoveJobOutputDir(jobID); err != nil {
		log.Printf("[api] ⚠️ could not remove output of job %s: %v", jobID, err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile serves a written spreadsheet
// @Summary Download file
// @Description Download the file written by an export
// @Tags files
// @Produce application/octet-stream
// @Param jobID path string true "Job ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{jobID}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	jobID, fileName := router.Param(r, 0), router.Param(r, 1)

	filePath, err := h.Output.ResolveFile(jobID, fileName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set("Content-Type", h.Output.GetContentType(fileName))
	http.ServeFile(w, r, filePath)
}
