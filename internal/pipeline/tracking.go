package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"odoo-exporter/internal/model"
)

// ExportTracker collects per-stage durations, record counts and remote call
// counts for one run.
type ExportTracker struct {
	JobID string

	mu      sync.Mutex
	metrics model.ExportMetrics
	calls   map[string]*int64
}

func NewExportTracker(jobID string) *ExportTracker {
	return &ExportTracker{
		JobID: jobID,
		metrics: model.ExportMetrics{
			StartTime: time.Now(),
			Stages:    make(map[string]model.StageMetrics),
		},
		calls: make(map[string]*int64),
	}
}

// StartStage marks the start of a stage
func (t *ExportTracker) StartStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.Stages[stage] = model.StageMetrics{
		StageName: stage,
		StartTime: time.Now(),
		Status:    "running",
	}
	if _, ok := t.calls[stage]; !ok {
		t.calls[stage] = new(int64)
	}
}

// EndStage marks the end of a stage with its outcome
func (t *ExportTracker) EndStage(stage string, recordsProcessed int64, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	s := t.metrics.Stages[stage]
	s.StageName = stage
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	s.EndTime = now
	s.Duration = now.Sub(s.StartTime)
	s.RecordsProcessed = recordsProcessed
	s.Status = status
	if c, ok := t.calls[stage]; ok {
		s.RemoteCalls = atomic.LoadInt64(c)
	}
	t.metrics.Stages[stage] = s

	fmt.Printf("📊 Stage '%s' %s: %d records in %v\n", stage, status, recordsProcessed, s.Duration.Round(time.Millisecond))
}

// SkipStage records a stage that did not run
func (t *ExportTracker) SkipStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics.Stages[stage] = model.StageMetrics{StageName: stage, Status: "skipped"}
}

// Backend wraps b so every remote call is counted against stage
func (t *ExportTracker) Backend(stage string, b Backend) Backend {
	t.mu.Lock()
	c, ok := t.calls[stage]
	if !ok {
		c = new(int64)
		t.calls[stage] = c
	}
	t.mu.Unlock()
	return &countingBackend{Backend: b, calls: c}
}

// Complete closes the run's metrics
func (t *ExportTracker) Complete(totalRecords int64) model.ExportMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.EndTime = time.Now()
	t.metrics.ProcessingTime = t.metrics.EndTime.Sub(t.metrics.StartTime)
	t.metrics.TotalRecords = totalRecords

	var calls int64
	for _, c := range t.calls {
		calls += atomic.LoadInt64(c)
	}
	t.metrics.RemoteCalls = calls
	if secs := t.metrics.ProcessingTime.Seconds(); secs > 0 {
		t.metrics.ThroughputRPS = float64(totalRecords) / secs
	}

	fmt.Printf("📊 Export completed in %v: %d records, %d remote calls\n",
		t.metrics.ProcessingTime.Round(time.Millisecond), totalRecords, calls)
	return t.snapshot()
}

func (t *ExportTracker) snapshot() model.ExportMetrics {
	m := t.metrics
	m.Stages = make(map[string]model.StageMetrics, len(t.metrics.Stages))
	for k, v := range t.metrics.Stages {
		m.Stages[k] = v
	}
	return m
}

type countingBackend struct {
	Backend
	calls *int64
}

func (b *countingBackend) Search(ctx context.Context, modelName string, domain model.Domain, offset, limit int) ([]int64, error) {
	atomic.AddInt64(b.calls, 1)
	return b.Backend.Search(ctx, modelName, domain, offset, limit)
}

func (b *countingBackend) Read(ctx context.Context, modelName string, ids []int64, fields []string) ([]map[string]interface{}, error) {
	atomic.AddInt64(b.calls, 1)
	return b.Backend.Read(ctx, modelName, ids, fields)
}

func (b *countingBackend) SearchRead(ctx context.Context, modelName string, domain model.Domain, fields []string, offset, limit int, order string) ([]map[string]interface{}, error) {
	atomic.AddInt64(b.calls, 1)
	return b.Backend.SearchRead(ctx, modelName, domain, fields, offset, limit, order)
}
