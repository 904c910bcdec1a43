package job

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdoherty/fhir-admin/internal/sampledata"
)

// Manager tracks sample data load jobs in memory. Jobs are written to from
// the load goroutine and read from request handlers, so every access goes
// through the mutex.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob registers a new pending job for a load request.
func (m *Manager) CreateJob(req sampledata.Request) *Status {
	job := &Status{
		ID:             uuid.NewString(),
		Status:         StatusPending,
		Message:        "Job created",
		ConnectionName: req.ConnectionName,
		BucketName:     req.BucketName,
		SampleType:     req.SampleType,
		StartTime:      time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job

	return snapshot(job)
}

// GetJob retrieves a copy of a job by ID.
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return snapshot(job), nil
}

// Start marks a job as running.
func (m *Manager) Start(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.Status = StatusRunning
		job.Message = "Loading sample data"
	}
}

// AppendEvent records one progress snapshot against a job.
func (m *Manager) AppendEvent(jobID string, event sampledata.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	job.Events = append(job.Events, event)
	if event.Message != "" {
		job.Message = event.Message
	}
}

// Complete finalizes a job with its load result.
func (m *Manager) Complete(jobID string, result sampledata.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	endTime := time.Now()
	job.EndTime = &endTime
	job.Result = &result
	job.Message = result.Message

	if result.Success {
		job.Status = StatusCompleted
	} else {
		job.Status = StatusFailed
		job.Error = result.Message
	}
}

// ListJobs lists jobs with pagination, newest first.
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, snapshot(job))
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	totalPages := (len(jobs) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: totalPages,
		}
	}

	end := start + pageSize
	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: totalPages,
	}
}

// snapshot copies a job so callers never share memory with the live record.
func snapshot(job *Status) *Status {
	copied := *job
	copied.Events = append([]sampledata.Progress(nil), job.Events...)
	return &copied
}
