package sampledata

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jdoherty/fhir-admin/internal/dataset"
	"github.com/jdoherty/fhir-admin/internal/fhir"
	"github.com/jdoherty/fhir-admin/internal/store"
	"github.com/jdoherty/fhir-admin/internal/users"
)

const (
	// defaultMaxConcurrency bounds the worker pool when the config does not
	// say otherwise. Kept low to avoid overwhelming managed clusters.
	defaultMaxConcurrency = 6

	statsCacheTTL = 5 * time.Minute
)

// BundleProcessor commits a transaction bundle and reports per-entry
// statuses.
type BundleProcessor interface {
	ProcessTransaction(ctx context.Context, target fhir.Target, payload []byte) ([]fhir.EntryStatus, error)
}

// ResourceProcessor stores one standalone resource.
type ResourceProcessor interface {
	Store(ctx context.Context, target fhir.Target, payload []byte, skipValidation bool) (fhir.StoreResult, error)
}

// UserCreator provisions admin users; used by the post-load bootstrap.
type UserCreator interface {
	Create(ctx context.Context, connection, bucket string, user users.User, password, createdBy string) error
}

// ConnectionResolver resolves a connection name to its document store.
type ConnectionResolver interface {
	Resolve(name string) (store.DocumentStore, error)
}

// Service runs sample data loads against a registered connection.
type Service struct {
	connections    ConnectionResolver
	catalog        *dataset.Catalog
	bundles        BundleProcessor
	resources      ResourceProcessor
	users          UserCreator
	maxConcurrency int

	stats *ttlcache.Cache[string, Result]
}

func NewService(
	connections ConnectionResolver,
	catalog *dataset.Catalog,
	bundles BundleProcessor,
	resources ResourceProcessor,
	userCreator UserCreator,
	maxConcurrency int,
) *Service {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	stats := ttlcache.New[string, Result](
		ttlcache.WithTTL[string, Result](statsCacheTTL),
	)
	go stats.Start()

	return &Service{
		connections:    connections,
		catalog:        catalog,
		bundles:        bundles,
		resources:      resources,
		users:          userCreator,
		maxConcurrency: maxConcurrency,
		stats:          stats,
	}
}

// Load runs a sample data load without progress reporting.
func (s *Service) Load(ctx context.Context, req Request) Result {
	return s.LoadWithProgress(ctx, req, nil)
}
