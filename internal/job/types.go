package job

import (
	"time"

	"github.com/jdoherty/fhir-admin/internal/sampledata"
)

// Constants for job status
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Status represents the current state of a sample data load job.
type Status struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"`
	Message        string                `json:"message"`
	Error          string                `json:"error,omitempty"`
	ConnectionName string                `json:"connection_name"`
	BucketName     string                `json:"bucket_name"`
	SampleType     string                `json:"sample_type"`
	Events         []sampledata.Progress `json:"events"`
	Result         *sampledata.Result    `json:"result,omitempty"`
	StartTime      time.Time             `json:"start_time"`
	EndTime        *time.Time            `json:"end_time,omitempty"`
}

// Response represents one page of jobs.
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}
