package fhir

import (
	"encoding/json"

	"github.com/jdoherty/fhir-admin/internal/store"
)

// ResourceTypePatient is the resource type counted separately in load
// reports.
const ResourceTypePatient = "Patient"

// ScopeResources is the scope FHIR documents live under; each resource type
// gets its own collection.
const ScopeResources = "Resources"

// Target identifies where a processor writes: a resolved connection and the
// bucket within it.
type Target struct {
	Store  store.DocumentStore
	Bucket string
}

// Outcome reports what one archive entry committed: total resources and how
// many were of the distinguished primary type.
type Outcome struct {
	Resources int
	Primary   int
}

// EntryStatus is the per-entry result of a bundle transaction, mirroring a
// FHIR transaction-response entry.
type EntryStatus struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Status       string `json:"status"`
}

// StoreResult is the result of storing a single standalone resource.
type StoreResult struct {
	Success      bool   `json:"success"`
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

type resourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

type bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Entry        []bundleEntry `json:"entry"`
}

type bundleEntry struct {
	FullURL  string          `json:"fullUrl"`
	Resource json.RawMessage `json:"resource"`
}
