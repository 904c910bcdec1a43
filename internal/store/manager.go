package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchbase/gocb/v2"

	"github.com/jdoherty/fhir-admin/config"
)

const bucketReadyTimeout = 10 * time.Second

// Manager is a thread-safe registry of named cluster connections. All store
// access in the server goes through a connection obtained from here.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Connection)}
}

// Register connects to the cluster and waits for the default bucket to be
// ready before admitting the connection into the registry.
func (m *Manager) Register(ctx context.Context, cfg config.ConnectionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[cfg.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, cfg.Name)
	}

	cluster, err := gocb.Connect(cfg.ConnectionString, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Name, err)
	}

	bucket := cluster.Bucket(cfg.Bucket)
	if err := bucket.WaitUntilReady(bucketReadyTimeout, nil); err != nil {
		_ = cluster.Close(nil)
		return fmt.Errorf("bucket %s not ready on %s: %w", cfg.Bucket, cfg.Name, err)
	}

	m.conns[cfg.Name] = &Connection{
		Name:    cfg.Name,
		Bucket:  cfg.Bucket,
		cluster: cluster,
	}

	slog.Info("Registered store connection", "name", cfg.Name, "bucket", cfg.Bucket)
	return nil
}

// Get returns the named connection.
func (m *Manager) Get(name string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, exists := m.conns[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return conn, nil
}

// Resolve returns the named connection as a DocumentStore. Callers that only
// read and write documents depend on this narrower view.
func (m *Manager) Resolve(name string) (DocumentStore, error) {
	return m.Get(name)
}

// List returns summaries of all registered connections.
func (m *Manager) List() []ConnectionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ConnectionInfo, 0, len(m.conns))
	for _, conn := range m.conns {
		out = append(out, ConnectionInfo{Name: conn.Name, Bucket: conn.Bucket})
	}
	return out
}

// Close shuts down and removes the named connection.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, exists := m.conns[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	delete(m.conns, name)
	if err := conn.cluster.Close(nil); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}

// CloseAll shuts down every registered connection. Used at server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, conn := range m.conns {
		if err := conn.cluster.Close(nil); err != nil {
			slog.Error("Failed to close connection", "name", name, "error", err)
		}
		delete(m.conns, name)
	}
}

// ConnectionInfo is the externally visible summary of a connection.
type ConnectionInfo struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket"`
}
