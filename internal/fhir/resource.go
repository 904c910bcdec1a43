package fhir

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ResourceProcessor stores standalone resources, assigning an id when the
// payload carries none.
type ResourceProcessor struct{}

func NewResourceProcessor() *ResourceProcessor {
	return &ResourceProcessor{}
}

// Store validates minimally, keys the document ResourceType/id and upserts
// it. skipValidation is honored for vetted payloads such as sample data.
func (p *ResourceProcessor) Store(ctx context.Context, target Target, payload []byte, skipValidation bool) (StoreResult, error) {
	var header resourceHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return StoreResult{}, fmt.Errorf("failed to parse resource: %w", err)
	}
	if header.ResourceType == "" {
		return StoreResult{}, fmt.Errorf("resource has no resourceType")
	}

	if !skipValidation {
		if err := validateShape(payload); err != nil {
			return StoreResult{}, err
		}
	}

	id := header.ID
	doc := json.RawMessage(payload)
	if id == "" {
		id = uuid.NewString()
		doc = withID(payload, id)
	}

	docID := header.ResourceType + "/" + id
	if err := target.Store.Upsert(ctx, target.Bucket, ScopeResources, header.ResourceType, docID, doc); err != nil {
		return StoreResult{}, fmt.Errorf("failed to store %s: %w", docID, err)
	}

	return StoreResult{Success: true, ResourceType: header.ResourceType, ID: id}, nil
}

// validateShape is a structural sanity check, not a FHIR profile validation.
func validateShape(payload []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("resource is not a JSON object: %w", err)
	}
	if _, ok := doc["resourceType"]; !ok {
		return fmt.Errorf("resource has no resourceType")
	}
	return nil
}

// withID re-encodes the payload with the assigned id set.
func withID(payload []byte, id string) json.RawMessage {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return payload
	}
	idJSON, _ := json.Marshal(id)
	doc["id"] = idJSON
	out, err := json.Marshal(doc)
	if err != nil {
		return payload
	}
	return out
}
