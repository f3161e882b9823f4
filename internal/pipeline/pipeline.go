// Package pipeline runs one export: validate, authenticate, fetch every
// matching record page by page, resolve relational values to labels,
// optionally join one related label per record, and write the table.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/logging"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/odoo"
	"odoo-exporter/pkg/utils"
)

// Connector authenticates and returns a backend bound to that login
type Connector func(ctx context.Context, creds model.Credentials) (Backend, error)

// OdooConnector authenticates against the XML-RPC API with the given per-call
// timeout.
func OdooConnector(callTimeout time.Duration) Connector {
	return func(ctx context.Context, creds model.Credentials) (Backend, error) {
		session, err := odoo.Authenticate(ctx, odoo.NewClient(creds.URL, odoo.WithCallTimeout(callTimeout)), creds)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// JobRecorder receives stage transitions of a run. The API stores them in the
// job history; the CLI passes nil.
type JobRecorder interface {
	UpdateStatus(jobID, status string) error
	UpdateProgress(jobID string, collected int) error
	Complete(jobID string, result model.ExportResult) error
	Fail(jobID, kind, message string) error
}

// Options are the run settings that do not come from the request
type Options struct {
	BatchSize   int
	Strategy    model.FetchStrategy
	References  []model.ReferenceConfig
	Policy      model.ReferencePolicy
	Join        model.JoinConfig
	FileName    string
	IncludeID   bool
	PreviewRows int
	JobTimeout  time.Duration
}

// DefaultOptions mirror the configuration defaults
func DefaultOptions() Options {
	return Options{
		BatchSize:   DefaultBatchSize,
		Strategy:    model.SearchThenRead,
		References:  DefaultReferences(),
		Policy:      model.AllIDs,
		Join:        DefaultJoin(),
		FileName:    DefaultFileName,
		IncludeID:   true,
		PreviewRows: 100,
		JobTimeout:  30 * time.Minute,
	}
}

// Runner coordinates the stages of an export. It holds no per-run state and
// may serve concurrent requests.
type Runner struct {
	Options
	Connect  Connector
	Output   *utils.OutputManager
	Recorder JobRecorder
}

func NewRunner(opts Options, connect Connector, output *utils.OutputManager, recorder JobRecorder) *Runner {
	if output == nil {
		output = utils.NewOutputManager(".")
	}
	return &Runner{Options: opts, Connect: connect, Output: output, Recorder: recorder}
}

// ------------------- Export Runner -------------------

// Run executes one export end to end. Zero matching records is not an error:
// the result has status no_records and no file is written. Any failure
// returns a kinded error and leaves no file behind.
func (r *Runner) Run(ctx context.Context, jobID string, req model.ExportRequest, observer ProgressObserver) (result model.ExportResult, err error) {
	fmt.Printf("🚀 Starting export for job: %s (%s)\n", jobID, req.Query.Model)
	tracker := NewExportTracker(jobID)

	defer func() {
		if err != nil {
			msg := logging.MaskSecret(err.Error(), req.Password)
			log.Printf("[export] ❌ job %s failed: %s", jobID, msg)
			r.record(jobID, func(rec JobRecorder) error {
				return rec.Fail(jobID, string(exporterrors.KindOf(err)), msg)
			})
		}
	}()

	if err = ValidateRequest(req); err != nil {
		return result, err
	}

	if r.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.JobTimeout)
		defer cancel()
	}

	// --- AUTHENTICATION STAGE ---
	r.status(jobID, model.StatusAuthenticating)
	tracker.StartStage(model.StageAuthentication)
	backend, err := r.connect(ctx, req.Credentials)
	if err != nil {
		tracker.EndStage(model.StageAuthentication, 0, "failed")
		return result, err
	}
	tracker.EndStage(model.StageAuthentication, 0, "completed")

	// --- FETCH STAGE ---
	r.status(jobID, model.StatusFetching)
	tracker.StartStage(model.StageFetch)
	fetcher := NewFetcher(r.batchSize(req), r.strategy(req), MultiObserver{observer, r.progress(jobID)})
	raw, err := fetcher.Fetch(ctx, tracker.Backend(model.StageFetch, backend), req.Query)
	if err != nil {
		tracker.EndStage(model.StageFetch, int64(exporterrors.CollectedOf(err)), "failed")
		return result, err
	}
	tracker.EndStage(model.StageFetch, int64(len(raw)), "completed")

	if len(raw) == 0 {
		fmt.Printf("⚠️ No records matched for job: %s\n", jobID)
		for _, stage := range []string{model.StageResolve, model.StageJoin, model.StageExport} {
			tracker.SkipStage(stage)
		}
		result = model.ExportResult{
			JobID:      jobID,
			Status:     model.StatusNoRecords,
			Metrics:    tracker.Complete(0),
			FinishedAt: time.Now(),
		}
		r.record(jobID, func(rec JobRecorder) error { return rec.Complete(jobID, result) })
		return result, nil
	}

	// --- RESOLVE STAGE ---
	r.status(jobID, model.StatusResolving)
	tracker.StartStage(model.StageResolve)
	resolver := NewResolver(r.References, r.Policy)
	records, err := resolver.Resolve(ctx, tracker.Backend(model.StageResolve, backend), raw)
	if err != nil {
		tracker.EndStage(model.StageResolve, 0, "failed")
		return result, err
	}
	tracker.EndStage(model.StageResolve, int64(len(records)), "completed")

	// --- JOIN STAGE ---
	var extra []string
	if r.Join.Enabled {
		r.status(jobID, model.StatusJoining)
		tracker.StartStage(model.StageJoin)
		joiner := NewJoiner(r.Join, r.batchSize(req))
		if err = joiner.Join(ctx, tracker.Backend(model.StageJoin, backend), records); err != nil {
			tracker.EndStage(model.StageJoin, 0, "failed")
			return result, err
		}
		tracker.EndStage(model.StageJoin, int64(len(records)), "completed")
		extra = append(extra, joiner.Column())
	} else {
		tracker.SkipStage(model.StageJoin)
	}

	// --- EXPORT STAGE ---
	r.status(jobID, model.StatusWriting)
	tracker.StartStage(model.StageExport)
	fileName := r.fileName(req)
	path, err := r.Output.GetOutputFilePath(jobID, fileName)
	if err != nil {
		tracker.EndStage(model.StageExport, 0, "failed")
		return result, exporterrors.Wrap(exporterrors.Export, "prepare output directory", err)
	}
	columns := Columns(req.Query.Fields, r.IncludeID, extra...)
	count, err := WriteTable(path, Table{Model: req.Query.Model, Columns: columns, Rows: records})
	if err != nil {
		tracker.EndStage(model.StageExport, 0, "failed")
		return result, err
	}
	tracker.EndStage(model.StageExport, int64(count), "completed")

	result = model.ExportResult{
		JobID:       jobID,
		Status:      model.StatusCompleted,
		RecordCount: count,
		Columns:     columns,
		FilePath:    path,
		DownloadURL: r.Output.GetDownloadURL(jobID, fileName),
		Preview:     preview(records, r.PreviewRows),
		Metrics:     tracker.Complete(int64(count)),
		FinishedAt:  time.Now(),
	}
	r.record(jobID, func(rec JobRecorder) error { return rec.Complete(jobID, result) })

	fmt.Printf("🏁 Export completed successfully for job: %s (%d records)\n", jobID, count)
	return result, nil
}

func (r *Runner) connect(ctx context.Context, creds model.Credentials) (Backend, error) {
	connect := r.Connect
	if connect == nil {
		connect = OdooConnector(0)
	}
	backend, err := connect(ctx, creds)
	if err != nil {
		if exporterrors.KindOf(err) == "" {
			err = exporterrors.Wrap(exporterrors.Authentication, "connect", err)
		}
		return nil, err
	}
	return backend, nil
}

func (r *Runner) batchSize(req model.ExportRequest) int {
	if req.BatchSize > 0 {
		return req.BatchSize
	}
	return r.BatchSize
}

func (r *Runner) strategy(req model.ExportRequest) model.FetchStrategy {
	if req.Strategy != "" {
		return req.Strategy
	}
	return r.Strategy
}

// fileName picks the request's file name, then the configured one, and makes
// sure it carries an extension.
func (r *Runner) fileName(req model.ExportRequest) string {
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		name = r.FileName
	}
	if name == "" {
		name = DefaultFileName
	}
	name = filepath.Base(name)
	if filepath.Ext(name) == "" {
		name += ".xlsx"
	}
	return name
}

func (r *Runner) status(jobID, status string) {
	r.record(jobID, func(rec JobRecorder) error { return rec.UpdateStatus(jobID, status) })
}

func (r *Runner) progress(jobID string) ProgressObserver {
	if r.Recorder == nil {
		return nil
	}
	return ProgressFunc(func(collected int) {
		r.record(jobID, func(rec JobRecorder) error { return rec.UpdateProgress(jobID, collected) })
	})
}

// record forwards to the recorder; a failing history write never fails the run
func (r *Runner) record(jobID string, fn func(JobRecorder) error) {
	if r.Recorder == nil {
		return
	}
	if err := fn(r.Recorder); err != nil {
		log.Printf("[export] ⚠️ could not record job %s: %v", jobID, err)
	}
}

func preview(records []model.GenericRecord, n int) []model.GenericRecord {
	if n <= 0 {
		return nil
	}
	if len(records) < n {
		n = len(records)
	}
	return records[:n]
}
