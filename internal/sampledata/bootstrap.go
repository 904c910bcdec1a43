package sampledata

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jdoherty/fhir-admin/internal/users"
)

const testUserPassword = "password123"

// testUsers are the demo principals tied to the US Core examples: the
// Patient/example and Practitioner/practitioner-1 resources the archive
// contains.
var testUsers = []users.User{
	{
		ID:         "amy.shaw@example.com",
		Email:      "amy.shaw@example.com",
		Username:   "Amy Shaw",
		Role:       "patient",
		AuthMethod: "local",
		Status:     "active",
		FHIRUser:   "Patient/example",
	},
	{
		ID:         "ronald.bone@example.org",
		Email:      "ronald.bone@example.org",
		Username:   "Ronald Bone",
		Role:       "practitioner",
		AuthMethod: "local",
		Status:     "active",
		FHIRUser:   "Practitioner/practitioner-1",
	},
}

// createTestUsers provisions the demo users after a load. Idempotent: users
// that already exist are skipped. Failures degrade to warnings and never
// flip the load result.
func (s *Service) createTestUsers(ctx context.Context, req Request, reporter ProgressReporter, total, processed int) {
	if s.users == nil {
		return
	}

	slog.Info("Creating test users for sample data", "connection", req.ConnectionName, "bucket", req.BucketName)

	s.emit(reporter, Progress{
		Status:         StatusInProgress,
		TotalFiles:     total,
		ProcessedFiles: processed,
		Message:        "Creating test users (Patient & Practitioner)...",
	})

	for _, user := range testUsers {
		err := s.users.Create(ctx, req.ConnectionName, req.BucketName, user, testUserPassword, "system")
		switch {
		case errors.Is(err, users.ErrAlreadyExists):
			slog.Info("Test user already exists, skipping", "id", user.ID)
		case err != nil:
			slog.Warn("Failed to create test user", "id", user.ID, "error", err)
		default:
			slog.Info("Created test user", "id", user.ID, "role", user.Role)
		}
	}
}
