package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
	// Flat writes files straight into BaseOutputDir instead of one
	// directory per job. The CLI uses it; downloads need per-job directories.
	Flat bool
}

// NewOutputManager creates a new output manager. An empty dir means the
// current directory.
func NewOutputManager(baseOutputDir string) *OutputManager {
	if baseOutputDir == "" {
		baseOutputDir = "."
	}
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateJobOutputDir creates the per-job directory holding its spreadsheet
func (om *OutputManager) CreateJobOutputDir(jobID string) (string, error) {
	jobDir := filepath.Join(om.BaseOutputDir, filepath.Base(jobID))

	err := os.MkdirAll(jobDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}

	return jobDir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(jobID, fileName string) (string, error) {
	if om.Flat {
		if err := os.MkdirAll(om.BaseOutputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		return filepath.Join(om.BaseOutputDir, filepath.Base(fileName)), nil
	}

	jobDir, err := om.CreateJobOutputDir(jobID)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	cleanFileName := filepath.Base(fileName)

	return filepath.Join(jobDir, cleanFileName), nil
}

// ResolveFile returns the path of an existing output file. Job ids and file
// names are reduced to their base name, so a request cannot leave the
// output directory.
func (om *OutputManager) ResolveFile(jobID, fileName string) (string, error) {
	cleanJob := filepath.Base(jobID)
	cleanFile := filepath.Base(fileName)
	if cleanJob != jobID || cleanFile != fileName || cleanJob == "." || cleanJob == ".." || cleanFile == "." || cleanFile == ".." {
		return "", fmt.Errorf("invalid output path %s/%s", jobID, fileName)
	}

	path := filepath.Join(om.BaseOutputDir, cleanJob, cleanFile)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// RemoveJobOutputDir deletes a job's directory and everything in it
func (om *OutputManager) RemoveJobOutputDir(jobID string) error {
	clean := filepath.Base(jobID)
	if clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return fmt.Errorf("invalid job id %q", jobID)
	}
	return os.RemoveAll(filepath.Join(om.BaseOutputDir, clean))
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(jobID, fileName string) string {
	cleanFileName := filepath.Base(fileName)
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, cleanFileName)
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx":
		return "excel"
	default:
		return "unknown"
	}
}

// GetContentType returns the MIME type served for a download
func (om *OutputManager) GetContentType(fileName string) string {
	switch om.GetFileType(fileName) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "json":
		return "application/json"
	case "excel":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
