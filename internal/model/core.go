package model

import "time"

// Job statuses as stored in the job history
const (
	StatusPending        = "pending"
	StatusAuthenticating = "authenticating"
	StatusFetching       = "fetching"
	StatusResolving      = "resolving"
	StatusJoining        = "joining"
	StatusWriting        = "writing"
	StatusCompleted      = "completed"
	StatusNoRecords      = "no_records"
	StatusFailed         = "failed"
)

// ExportResult is what a finished run hands back to the front end
type ExportResult struct {
	JobID       string          `json:"jobId"`
	Status      string          `json:"status"` // completed or no_records
	RecordCount int             `json:"recordCount"`
	Columns     []string        `json:"columns,omitempty"`
	FilePath    string          `json:"filePath,omitempty"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
	Preview     []GenericRecord `json:"preview,omitempty"`
	Metrics     ExportMetrics   `json:"metrics"`
	FinishedAt  time.Time       `json:"finishedAt"`
}

// ExportJob is one row of the job history. It never carries the password.
type ExportJob struct {
	ID          string         `json:"id"`
	Model       string         `json:"model"`
	URL         string         `json:"url"`
	Database    string         `json:"database"`
	Username    string         `json:"username"`
	Domain      Domain         `json:"domain"`
	Fields      []string       `json:"fields"`
	FilterName  string         `json:"filterName,omitempty"`
	Status      string         `json:"status"`
	Collected   int            `json:"collected"`
	RecordCount int            `json:"recordCount"`
	FilePath    string         `json:"filePath,omitempty"`
	Metrics     *ExportMetrics `json:"metrics,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// JobError is an error recorded against a job
type JobError struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"jobId"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
