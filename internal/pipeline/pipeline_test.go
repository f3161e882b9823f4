package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
	"odoo-exporter/pkg/utils"
)

type memRecorder struct {
	mu       sync.Mutex
	statuses []string
	progress []int
	result   *model.ExportResult
	failKind string
	failMsg  string
}

func (m *memRecorder) UpdateStatus(jobID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memRecorder) UpdateProgress(jobID string, collected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, collected)
	return nil
}

func (m *memRecorder) Complete(jobID string, result model.ExportResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &result
	return nil
}

func (m *memRecorder) Fail(jobID, kind, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKind, m.failMsg = kind, message
	return nil
}

func request() model.ExportRequest {
	return model.ExportRequest{
		Credentials: model.Credentials{
			URL:      "https://odoo.example.com",
			Database: "prod",
			Username: "joe",
			Password: "s3cret",
		},
		Query: model.QuerySpec{
			Model:  caseModel,
			Domain: model.Domain{[]interface{}{"estado_cliente", "=", "a"}},
			Fields: []string{"name", "parte_contraria_ids"},
		},
	}
}

func newTestRunner(t *testing.T, backend Backend, recorder JobRecorder) (*Runner, *int) {
	t.Helper()
	connects := 0
	opts := DefaultOptions()
	opts.BatchSize = 2
	opts.References = partnerRefs()
	opts.Join = joinConfig()
	connect := func(ctx context.Context, creds model.Credentials) (Backend, error) {
		connects++
		return backend, nil
	}
	return NewRunner(opts, connect, utils.NewOutputManager(t.TempDir()), recorder), &connects
}

func TestRunWritesSpreadsheet(t *testing.T) {
	records := caseRecords(3)
	records[0]["parte_contraria_ids"] = []interface{}{int64(3), int64(99)}
	backend := newFakeBackend(records)
	backend.partners = map[int64]string{3: "Alice"}
	backend.related = []map[string]interface{}{related(50, 2, "Apelação")}
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)

	result, err := runner.Run(context.Background(), "job-1", request(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != model.StatusCompleted || result.RecordCount != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if filepath.Base(result.FilePath) != DefaultFileName {
		t.Fatalf("unexpected file name %s", result.FilePath)
	}
	if result.DownloadURL != "/api/v1/download/job-1/"+DefaultFileName {
		t.Fatalf("unexpected download url %s", result.DownloadURL)
	}
	if strings.Join(result.Columns, ",") != "id,name,parte_contraria_ids,caso_relacionado" {
		t.Fatalf("unexpected columns %v", result.Columns)
	}
	if result.Preview[0]["parte_contraria_ids"] != "Alice, 99" {
		t.Fatalf("unexpected resolved value %v", result.Preview[0]["parte_contraria_ids"])
	}
	if result.Preview[1]["caso_relacionado"] != "Apelação" {
		t.Fatalf("unexpected joined value %v", result.Preview[1]["caso_relacionado"])
	}

	// pages of 2: search x3, read x2, one partner read, two join lookups
	if got := result.Metrics.RemoteCalls; got != 8 {
		t.Fatalf("expected 8 remote calls, got %d (%v)", got, backend.calls)
	}
	wantStatuses := []string{
		model.StatusAuthenticating, model.StatusFetching, model.StatusResolving,
		model.StatusJoining, model.StatusWriting,
	}
	if strings.Join(recorder.statuses, ",") != strings.Join(wantStatuses, ",") {
		t.Fatalf("unexpected statuses %v", recorder.statuses)
	}
	if recorder.result == nil || recorder.result.Status != model.StatusCompleted {
		t.Fatalf("expected completion to be recorded")
	}
}

func TestRunNoRecordsWritesNothing(t *testing.T) {
	backend := newFakeBackend(nil)
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)

	result, err := runner.Run(context.Background(), "job-empty", request(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != model.StatusNoRecords {
		t.Fatalf("expected no_records, got %s", result.Status)
	}
	if result.FilePath != "" {
		t.Fatalf("no file expected, got %s", result.FilePath)
	}
	if _, err := os.Stat(filepath.Join(runner.Output.BaseOutputDir, "job-empty")); !os.IsNotExist(err) {
		t.Fatalf("job directory must not be created, stat err = %v", err)
	}
	if got := backend.count("read", partnerModel); got != 0 {
		t.Fatalf("no lookups expected, got %d", got)
	}
}

func TestRunFetchFailureLeavesNoFile(t *testing.T) {
	backend := newFakeBackend(caseRecords(6))
	backend.failAt["search "+caseModel] = 3
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)

	_, err := runner.Run(context.Background(), "job-fail", request(), nil)
	if !exporterrors.Is(err, exporterrors.Fetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if exporterrors.CollectedOf(err) != 4 {
		t.Fatalf("expected 4 collected records, got %d", exporterrors.CollectedOf(err))
	}
	if _, err := os.Stat(filepath.Join(runner.Output.BaseOutputDir, "job-fail")); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
	if recorder.failKind != string(exporterrors.Fetch) {
		t.Fatalf("expected failure recorded as fetch, got %q", recorder.failKind)
	}
}

func TestRunMalformedInputMakesNoCalls(t *testing.T) {
	backend := newFakeBackend(caseRecords(1))
	runner, connects := newTestRunner(t, backend, nil)

	req := request()
	req.Query.Fields = nil
	_, err := runner.Run(context.Background(), "job-bad", req, nil)
	if !exporterrors.Is(err, exporterrors.MalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	if *connects != 0 || len(backend.calls) != 0 {
		t.Fatalf("expected no network activity, connects=%d calls=%v", *connects, backend.calls)
	}
}

func TestRunAuthenticationFailureMasksPassword(t *testing.T) {
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, nil, recorder)
	runner.Connect = func(ctx context.Context, creds model.Credentials) (Backend, error) {
		return nil, errors.New("fault: bad login joe/" + creds.Password)
	}

	_, err := runner.Run(context.Background(), "job-auth", request(), nil)
	if !exporterrors.Is(err, exporterrors.Authentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if strings.Contains(recorder.failMsg, "s3cret") {
		t.Fatalf("password leaked into job history: %s", recorder.failMsg)
	}
}

func TestRunReportsProgress(t *testing.T) {
	backend := newFakeBackend(caseRecords(5))
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)
	runner.Join.Enabled = false

	var seen []int
	_, err := runner.Run(context.Background(), "job-progress", request(), ProgressFunc(func(n int) { seen = append(seen, n) }))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 3 || seen[2] != 5 {
		t.Fatalf("unexpected observer reports %v", seen)
	}
	if len(recorder.progress) != 3 {
		t.Fatalf("unexpected recorded progress %v", recorder.progress)
	}
}

func TestRunResolutionFailureLeavesNoFile(t *testing.T) {
	records := caseRecords(3)
	records[1]["parte_contraria_ids"] = []interface{}{int64(7)}
	backend := newFakeBackend(records)
	backend.failAt["read "+partnerModel] = 1
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)

	_, err := runner.Run(context.Background(), "job-resolve", request(), nil)
	if !exporterrors.Is(err, exporterrors.Resolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(runner.Output.BaseOutputDir, "job-resolve")); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
	if recorder.failKind != string(exporterrors.Resolution) || recorder.result != nil {
		t.Fatalf("expected failure recorded as resolution, got %q (result %v)", recorder.failKind, recorder.result)
	}
	if got := backend.count("search_read", relatedModel); got != 0 {
		t.Fatalf("join must not run after a failed lookup, got %d calls", got)
	}
}

func TestRunJoinFailureLeavesNoFile(t *testing.T) {
	backend := newFakeBackend(caseRecords(3))
	backend.failAt["search_read "+relatedModel] = 1
	recorder := &memRecorder{}
	runner, _ := newTestRunner(t, backend, recorder)

	_, err := runner.Run(context.Background(), "job-join", request(), nil)
	if !exporterrors.Is(err, exporterrors.Resolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(runner.Output.BaseOutputDir, "job-join")); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
	if recorder.failKind != string(exporterrors.Resolution) {
		t.Fatalf("expected failure recorded as resolution, got %q", recorder.failKind)
	}
	for _, s := range recorder.statuses {
		if s == model.StatusWriting {
			t.Fatalf("writer must not start after a failed join: %v", recorder.statuses)
		}
	}
}
