package sampledata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jdoherty/fhir-admin/internal/dataset"
)

// Stats scans the dataset archive and counts resources without loading
// anything. Results are cached; archives never change at runtime.
func (s *Service) Stats(ctx context.Context, sampleType string) Result {
	ds, err := s.catalog.Get(sampleType)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Failed to analyze sample data: %v", err)}
	}

	if item := s.stats.Get(ds.Selector); item != nil {
		return item.Value()
	}

	entries, err := dataset.ReadEntries(ctx, ds.Archive)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Failed to analyze sample data: %v", err)}
	}

	var resources, primary int
	for _, entry := range entries {
		r, p := countEntry(entry.Data, ds.PrimaryResourceType)
		resources += r
		primary += p
	}

	result := Result{
		Success:         true,
		Message:         fmt.Sprintf("Sample data contains %d patients with %d total resources", primary, resources),
		ResourcesLoaded: resources,
		PatientsLoaded:  primary,
	}
	s.stats.Set(ds.Selector, result, ttlcache.DefaultTTL)
	return result
}

// countEntry counts resources in one payload without storing anything.
func countEntry(payload []byte, primaryType string) (resources, primary int) {
	kind, resourceType, err := classify(payload)
	if err != nil {
		return 0, 0
	}

	if kind == kindResource {
		if resourceType == primaryType {
			return 1, 1
		}
		return 1, 0
	}

	var b struct {
		Entry []struct {
			Resource struct {
				ResourceType string `json:"resourceType"`
			} `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(payload, &b); err != nil {
		return 0, 0
	}

	for _, entry := range b.Entry {
		if entry.Resource.ResourceType == "" {
			continue
		}
		resources++
		if entry.Resource.ResourceType == primaryType {
			primary++
		}
	}
	return resources, primary
}

// Availability reports which sample archives are present.
func (s *Service) Availability(ctx context.Context) Result {
	available := s.catalog.Available(ctx)

	var names []string
	for _, selector := range s.catalog.Selectors() {
		if available[selector] {
			names = append(names, displayName(selector))
		}
	}

	if len(names) == 0 {
		return Result{Success: false, Message: "No sample data files found"}
	}
	return Result{Success: true, Message: "Sample data available: " + strings.Join(names, " ")}
}

func displayName(selector string) string {
	switch selector {
	case dataset.SelectorSynthea:
		return "Synthea"
	case dataset.SelectorUSCore:
		return "US Core"
	default:
		return selector
	}
}
