package sampledata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jdoherty/fhir-admin/internal/dataset"
	"github.com/jdoherty/fhir-admin/internal/fhir"
)

// LoadWithProgress reads the dataset archive, dispatches one task per
// eligible entry onto a bounded worker pool and reports progress through the
// reporter. A single entry's failure never aborts the run; only a missing
// connection or an unreadable archive does, and those fail before any task
// is submitted.
func (s *Service) LoadWithProgress(ctx context.Context, req Request, reporter ProgressReporter) Result {
	slog.Info("Loading sample data",
		"connection", req.ConnectionName, "bucket", req.BucketName, "sampleType", req.SampleType)

	docs, err := s.connections.Resolve(req.ConnectionName)
	if err != nil {
		return s.fail(reporter, fmt.Sprintf("Connection not found: %s", req.ConnectionName))
	}

	ds, err := s.catalog.Get(req.SampleType)
	if err != nil {
		return s.fail(reporter, fmt.Sprintf("Failed to load sample data: %v", err))
	}

	entries, err := dataset.ReadEntries(ctx, ds.Archive)
	if err != nil {
		return s.fail(reporter, fmt.Sprintf("Failed to load sample data: %v", err))
	}

	total := len(entries)
	s.emit(reporter, Progress{
		Status:      StatusInitiated,
		TotalFiles:  total,
		CurrentFile: "Starting...",
		Message:     "Initializing sample data loading...",
	})

	target := fhir.Target{Store: docs, Bucket: req.BucketName}

	var completed, resources, primary atomic.Int64

	if limit := min(s.maxConcurrency, total); limit > 0 {
		sem := make(chan struct{}, limit)
		var wg sync.WaitGroup

		for _, entry := range entries {
			wg.Add(1)
			go func(entry dataset.Entry) {
				defer wg.Done()

				sem <- struct{}{}
				defer func() { <-sem }()

				s.emit(reporter, Progress{
					Status:          StatusInProgress,
					TotalFiles:      total,
					ProcessedFiles:  int(completed.Load()),
					CurrentFile:     entry.Name,
					ResourcesLoaded: int(resources.Load()),
					PatientsLoaded:  int(primary.Load()),
					Message:         fmt.Sprintf("Processing %s...", entry.Name),
				})

				outcome := s.processEntry(ctx, target, ds, entry)

				resources.Add(int64(outcome.Resources))
				primary.Add(int64(outcome.Primary))
				done := completed.Add(1)

				s.emit(reporter, Progress{
					Status:          StatusInProgress,
					TotalFiles:      total,
					ProcessedFiles:  int(done),
					CurrentFile:     entry.Name,
					ResourcesLoaded: int(resources.Load()),
					PatientsLoaded:  int(primary.Load()),
					Message:         fmt.Sprintf("Completed %s - %d resources loaded", entry.Name, resources.Load()),
				})

				slog.Info("Processed sample entry",
					"file", entry.Name, "completed", done, "total", total,
					"resources", resources.Load(), "patients", primary.Load())
			}(entry)
		}

		wg.Wait()
	}

	if ds.CreateTestUsers {
		s.createTestUsers(ctx, req, reporter, total, int(completed.Load()))
	}

	resourcesLoaded := int(resources.Load())
	patientsLoaded := int(primary.Load())

	s.emit(reporter, Progress{
		Status:          StatusCompleted,
		TotalFiles:      total,
		ProcessedFiles:  int(completed.Load()),
		CurrentFile:     "All files completed",
		ResourcesLoaded: resourcesLoaded,
		PatientsLoaded:  patientsLoaded,
		Message: fmt.Sprintf("Sample data loading completed successfully - %d resources (%d patients) loaded",
			resourcesLoaded, patientsLoaded),
	})

	slog.Info("Sample data load completed",
		"connection", req.ConnectionName, "bucket", req.BucketName,
		"resources", resourcesLoaded, "patients", patientsLoaded)

	return Result{
		Success:         true,
		Message:         "Sample data loaded successfully",
		ResourcesLoaded: resourcesLoaded,
		PatientsLoaded:  patientsLoaded,
		BucketName:      req.BucketName,
		ConnectionName:  req.ConnectionName,
	}
}

// processEntry classifies the payload and runs the matching processor. Every
// failure mode, including a processor panic, collapses to a zero outcome so
// sibling tasks keep running.
func (s *Service) processEntry(ctx context.Context, target fhir.Target, ds dataset.Dataset, entry dataset.Entry) (outcome fhir.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing sample entry", "file", entry.Name, "panic", r)
			outcome = fhir.Outcome{}
		}
	}()

	kind, _, err := classify(entry.Data)
	if err != nil {
		slog.Error("Skipping malformed sample entry", "file", entry.Name, "error", err)
		return fhir.Outcome{}
	}

	switch kind {
	case kindBundle:
		statuses, err := s.bundles.ProcessTransaction(ctx, target, entry.Data)
		if err != nil {
			slog.Error("Failed to process bundle", "file", entry.Name, "error", err)
			return fhir.Outcome{}
		}
		return tally(statuses, ds.PrimaryResourceType)

	default:
		res, err := s.resources.Store(ctx, target, entry.Data, true)
		if err != nil {
			slog.Error("Failed to store resource", "file", entry.Name, "error", err)
			return fhir.Outcome{}
		}
		if !res.Success {
			return fhir.Outcome{}
		}
		outcome := fhir.Outcome{Resources: 1}
		if res.ResourceType == ds.PrimaryResourceType {
			outcome.Primary = 1
		}
		return outcome
	}
}

// tally counts committed entries from a transaction response. Only 200/201
// style statuses count.
func tally(statuses []fhir.EntryStatus, primaryType string) fhir.Outcome {
	var outcome fhir.Outcome
	for _, status := range statuses {
		if !strings.HasPrefix(status.Status, "200") && !strings.HasPrefix(status.Status, "201") {
			continue
		}
		outcome.Resources++
		if status.ResourceType == primaryType {
			outcome.Primary++
		}
	}
	return outcome
}

func (s *Service) fail(reporter ProgressReporter, message string) Result {
	slog.Error("Sample data load failed", "reason", message)
	s.emit(reporter, Progress{Status: StatusError, Message: message})
	return Result{Success: false, Message: message}
}

// emit delivers a snapshot to the reporter. Best-effort: a panicking
// reporter is logged and ignored.
func (s *Service) emit(reporter ProgressReporter, p Progress) {
	if reporter == nil {
		return
	}

	if p.TotalFiles > 0 {
		p.PercentComplete = float64(p.ProcessedFiles) / float64(p.TotalFiles) * 100
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Progress reporter failed", "panic", r)
		}
	}()
	reporter.OnProgress(p)
}
