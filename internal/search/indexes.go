// Package search provisions full text search indexes for FHIR resource
// collections. Index definitions are console exports; before creation the
// definition is rewritten for the target bucket.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchbase/gocb/v2"

	"github.com/jdoherty/fhir-admin/internal/store"
)

// IndexInfo is the listing view of one search index.
type IndexInfo struct {
	Name       string `json:"name"`
	SourceName string `json:"sourceName"`
	Type       string `json:"type"`
	UUID       string `json:"uuid"`
}

// definition mirrors the console export format for a search index.
type definition struct {
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	UUID         string         `json:"uuid"`
	SourceName   string         `json:"sourceName"`
	SourceType   string         `json:"sourceType"`
	SourceUUID   string         `json:"sourceUUID"`
	Params       map[string]any `json:"params"`
	SourceParams map[string]any `json:"sourceParams"`
	PlanParams   map[string]any `json:"planParams"`
}

// Service manages search indexes across registered connections.
type Service struct {
	manager *store.Manager
}

func NewService(manager *store.Manager) *Service {
	return &Service{manager: manager}
}

// EnsureIndex creates or updates one index on the named connection from a
// raw console-export definition.
func (s *Service) EnsureIndex(ctx context.Context, connection, bucket, name string, raw json.RawMessage) error {
	conn, err := s.manager.Get(connection)
	if err != nil {
		return err
	}

	index, err := prepareIndex(bucket, name, raw)
	if err != nil {
		return fmt.Errorf("invalid index definition %q: %w", name, err)
	}

	err = conn.SearchIndexes().UpsertIndex(index, &gocb.UpsertSearchIndexOptions{Context: ctx})
	if err != nil {
		return fmt.Errorf("failed to upsert search index %q: %w", index.Name, err)
	}

	slog.Info("Search index upserted", "connection", connection, "index", index.Name)
	return nil
}

// ListIndexes returns all search indexes on the named connection.
func (s *Service) ListIndexes(ctx context.Context, connection string) ([]IndexInfo, error) {
	conn, err := s.manager.Get(connection)
	if err != nil {
		return nil, err
	}

	indexes, err := conn.SearchIndexes().GetAllIndexes(&gocb.GetAllSearchIndexOptions{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("failed to list search indexes: %w", err)
	}

	infos := make([]IndexInfo, 0, len(indexes))
	for _, index := range indexes {
		infos = append(infos, IndexInfo{
			Name:       index.Name,
			SourceName: index.SourceName,
			Type:       index.Type,
			UUID:       index.UUID,
		})
	}
	return infos, nil
}

// DropIndex removes one search index from the named connection.
func (s *Service) DropIndex(ctx context.Context, connection, name string) error {
	conn, err := s.manager.Get(connection)
	if err != nil {
		return err
	}

	err = conn.SearchIndexes().DropIndex(name, &gocb.DropSearchIndexOptions{Context: ctx})
	if err != nil {
		return fmt.Errorf("failed to drop search index %q: %w", name, err)
	}

	slog.Info("Search index dropped", "connection", connection, "index", name)
	return nil
}

// prepareIndex rewrites a console export for the target bucket: UUIDs are
// cleared so the server assigns fresh ones, the source points at the target
// bucket, and the name is qualified as bucket.Resources.name.
func prepareIndex(bucket, name string, raw json.RawMessage) (gocb.SearchIndex, error) {
	var def definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return gocb.SearchIndex{}, err
	}

	if name == "" {
		name = def.Name
	}
	if name == "" {
		return gocb.SearchIndex{}, fmt.Errorf("index name is required")
	}

	indexType := def.Type
	if indexType == "" {
		indexType = "fulltext-index"
	}
	sourceType := def.SourceType
	if sourceType == "" {
		sourceType = "couchbase"
	}

	return gocb.SearchIndex{
		Name:         qualifyName(bucket, name),
		Type:         indexType,
		SourceName:   bucket,
		SourceType:   sourceType,
		Params:       def.Params,
		SourceParams: def.SourceParams,
		PlanParams:   def.PlanParams,
	}, nil
}

// qualifyName scopes an index name to the bucket's Resources scope unless
// the definition already carries a qualified name.
func qualifyName(bucket, name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return fmt.Sprintf("%s.Resources.%s", bucket, name)
}
