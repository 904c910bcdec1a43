package fhir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

var errNotABundle = errors.New("payload is not a Bundle")

// BundleProcessor commits transaction bundles entry by entry. Intra-bundle
// urn:uuid references are rewritten to ResourceType/id references before any
// entry is stored, so references resolve regardless of entry order.
type BundleProcessor struct{}

func NewBundleProcessor() *BundleProcessor {
	return &BundleProcessor{}
}

// ProcessTransaction stores every entry of the bundle and returns one status
// per entry. A failing entry yields a failure status; it does not abort the
// remaining entries.
func (p *BundleProcessor) ProcessTransaction(ctx context.Context, target Target, payload []byte) ([]EntryStatus, error) {
	var b bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	if b.ResourceType != "Bundle" {
		return nil, errNotABundle
	}

	entries, refs := assignIdentities(b.Entry)
	replacer := referenceReplacer(refs)

	statuses := make([]EntryStatus, 0, len(entries))
	for _, entry := range entries {
		status := EntryStatus{ResourceType: entry.resourceType, ID: entry.id, Status: "201 Created"}

		doc := entry.resource
		if replacer != nil {
			doc = json.RawMessage(replacer.Replace(string(doc)))
		}

		docID := entry.resourceType + "/" + entry.id
		if err := target.Store.Upsert(ctx, target.Bucket, ScopeResources, entry.resourceType, docID, doc); err != nil {
			slog.Error("Failed to store bundle entry", "key", docID, "error", err)
			status.Status = "500 Internal Server Error"
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

type identifiedEntry struct {
	resourceType string
	id           string
	resource     json.RawMessage
}

// assignIdentities parses each entry's header, assigns ids where missing,
// and collects the fullUrl -> ResourceType/id mapping for reference
// rewriting. Entries without a parsable resourceType are dropped; their
// absence surfaces as a lower committed count.
func assignIdentities(entries []bundleEntry) ([]identifiedEntry, map[string]string) {
	out := make([]identifiedEntry, 0, len(entries))
	refs := make(map[string]string)

	for _, entry := range entries {
		var header resourceHeader
		if err := json.Unmarshal(entry.Resource, &header); err != nil || header.ResourceType == "" {
			slog.Warn("Skipping bundle entry without resourceType", "fullUrl", entry.FullURL)
			continue
		}

		id := header.ID
		if id == "" {
			id = uuid.NewString()
		}

		if entry.FullURL != "" {
			refs[entry.FullURL] = header.ResourceType + "/" + id
		}

		out = append(out, identifiedEntry{
			resourceType: header.ResourceType,
			id:           id,
			resource:     entry.Resource,
		})
	}

	return out, refs
}

// referenceReplacer builds a replacer for urn:uuid style fullUrls. Plain
// ResourceType/id fullUrls need no rewriting.
func referenceReplacer(refs map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(refs)*2)
	for fullURL, resolved := range refs {
		if !strings.HasPrefix(fullURL, "urn:") {
			continue
		}
		pairs = append(pairs, fullURL, resolved)
	}
	if len(pairs) == 0 {
		return nil
	}
	return strings.NewReplacer(pairs...)
}
