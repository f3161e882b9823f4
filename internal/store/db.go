// Package store keeps the export job history in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"odoo-exporter/internal/model"
)

var db *sql.DB

// ErrJobNotFound is returned when no job has the requested id
var ErrJobNotFound = errors.New("job not found")

// Initialize DB connection
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return err
	}
	// one connection: SQLite has a single writer
	db.SetMaxOpenConns(1)

	// Create tables if not exists
	jobTable := `
	CREATE TABLE IF NOT EXISTS export_jobs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		url TEXT NOT NULL,
		database_name TEXT NOT NULL,
		username TEXT NOT NULL,
		domain TEXT,
		fields TEXT,
		filter_name TEXT,
		status TEXT NOT NULL,
		collected INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		file_path TEXT,
		metrics TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS export_job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL REFERENCES export_jobs(id) ON DELETE CASCADE,
		kind TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := db.Exec(jobTable); err != nil {
		return err
	}
	if _, err := db.Exec(errorTable); err != nil {
		return err
	}

	return nil
}

// Close releases the database handle
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// SaveJob stores a new export job. The password is never part of a job.
func SaveJob(job model.ExportJob) error {
	domainJSON, err := json.Marshal(job.Domain)
	if err != nil {
		return err
	}
	fieldsJSON, err := json.Marshal(job.Fields)
	if err != nil {
		return err
	}
	if job.Status == "" {
		job.Status = model.StatusPending
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO export_jobs
		(id, model, url, database_name, username, domain, fields, filter_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Model, job.URL, job.Database, job.Username,
		string(domainJSON), string(fieldsJSON), nullable(job.FilterName), job.Status, now, now)
	return err
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE export_jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// UpdateJobProgress records how many records have been collected so far
func UpdateJobProgress(jobID string, collected int) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE export_jobs SET collected = ?, updated_at = ? WHERE id = ?`, collected, now, jobID)
	return err
}

// CompleteJob stores the final outcome of a successful run
func CompleteJob(jobID string, result model.ExportResult) error {
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`UPDATE export_jobs
		SET status = ?, collected = ?, record_count = ?, file_path = ?, metrics = ?, updated_at = ?
		WHERE id = ?`,
		result.Status, result.RecordCount, result.RecordCount, nullable(result.FilePath), string(metricsJSON), now, jobID)
	return err
}

// SaveJobError records an error for a job. message must already be masked.
func SaveJobError(jobID, kind, message string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO export_job_errors (job_id, kind, error_message, created_at) VALUES (?, ?, ?, ?)`,
		jobID, kind, message, now)
	return err
}

const jobColumns = `id, model, url, database_name, username, domain, fields, filter_name,
	status, collected, record_count, file_path, metrics, created_at, updated_at`

// ListJobs returns all jobs, newest first
func ListJobs() ([]model.ExportJob, error) {
	rows, err := db.Query(`SELECT ` + jobColumns + ` FROM export_jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.ExportJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// GetJob fetches one job
func GetJob(jobID string) (*model.ExportJob, error) {
	job, err := scanJob(db.QueryRow(`SELECT `+jobColumns+` FROM export_jobs WHERE id = ?`, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return job, err
}

// GetJobErrors returns the errors recorded for a job, oldest first
func GetJobErrors(jobID string) ([]model.JobError, error) {
	rows, err := db.Query(`SELECT id, job_id, kind, error_message, created_at
		FROM export_job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobErrors := []model.JobError{}
	for rows.Next() {
		var e model.JobError
		var kind sql.NullString
		if err := rows.Scan(&e.ID, &e.JobID, &kind, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = kind.String
		jobErrors = append(jobErrors, e)
	}
	return jobErrors, rows.Err()
}

// DeleteJob removes a job and its errors
func DeleteJob(jobID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM export_job_errors WHERE job_id = ?`, jobID); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM export_jobs WHERE id = ?`, jobID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (*model.ExportJob, error) {
	var job model.ExportJob
	var domainJSON, fieldsJSON, filterName, filePath, metricsJSON sql.NullString

	err := s.Scan(&job.ID, &job.Model, &job.URL, &job.Database, &job.Username,
		&domainJSON, &fieldsJSON, &filterName, &job.Status, &job.Collected, &job.RecordCount,
		&filePath, &metricsJSON, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if domainJSON.Valid && domainJSON.String != "" {
		if err := json.Unmarshal([]byte(domainJSON.String), &job.Domain); err != nil {
			return nil, fmt.Errorf("decode domain of job %s: %w", job.ID, err)
		}
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &job.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of job %s: %w", job.ID, err)
		}
	}
	if metricsJSON.Valid && metricsJSON.String != "" {
		var m model.ExportMetrics
		if err := json.Unmarshal([]byte(metricsJSON.String), &m); err != nil {
			return nil, fmt.Errorf("decode metrics of job %s: %w", job.ID, err)
		}
		job.Metrics = &m
	}
	job.FilterName = filterName.String
	job.FilePath = filePath.String
	return &job, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Recorder writes run transitions into the job history
type Recorder struct{}

func (Recorder) UpdateStatus(jobID, status string) error { return UpdateJobStatus(jobID, status) }

func (Recorder) UpdateProgress(jobID string, collected int) error {
	return UpdateJobProgress(jobID, collected)
}

func (Recorder) Complete(jobID string, result model.ExportResult) error {
	return CompleteJob(jobID, result)
}

func (Recorder) Fail(jobID, kind, message string) error {
	if err := UpdateJobStatus(jobID, model.StatusFailed); err != nil {
		return err
	}
	return SaveJobError(jobID, kind, message)
}
