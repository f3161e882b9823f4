package model

import "time"

// Stage names used in metrics and job history
const (
	StageAuthentication = "authentication"
	StageFetch          = "fetch"
	StageResolve        = "resolve"
	StageJoin           = "join"
	StageExport         = "export"
)

// StageMetrics represents metrics for a specific export stage
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	RemoteCalls      int64         `json:"remote_calls"`
	Status           string        `json:"status"` // "running", "completed", "failed", "skipped"
}

// ExportMetrics represents overall run metrics
type ExportMetrics struct {
	StartTime      time.Time               `json:"start_time"`
	EndTime        time.Time               `json:"end_time"`
	ProcessingTime time.Duration           `json:"processing_time"`
	TotalRecords   int64                   `json:"total_records"`
	RemoteCalls    int64                   `json:"remote_calls"`
	ThroughputRPS  float64                 `json:"throughput_rps"`
	Stages         map[string]StageMetrics `json:"stages"`
}
