package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "log_level: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 6, cfg.Loader.MaxConcurrentTasks)
	assert.Contains(t, cfg.Datasets, "synthea")
	assert.Contains(t, cfg.Datasets, "us-core")
	assert.True(t, cfg.Datasets["us-core"].CreateTestUsers)
	assert.Equal(t, "Patient", cfg.Datasets["synthea"].PrimaryResourceType)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
loader:
  max_concurrent_tasks: 3
store:
  connections:
    - name: local
      connection_string: couchbase://localhost
      username: Administrator
      password: password
      bucket: fhir
datasets:
  synthea:
    archive: /data/synthea.zip
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Loader.MaxConcurrentTasks)
	require.Len(t, cfg.Store.Connections, 1)
	assert.Equal(t, "local", cfg.Store.Connections[0].Name)
	// Primary resource type defaults per dataset.
	assert.Equal(t, "Patient", cfg.Datasets["synthea"].PrimaryResourceType)
}

func TestLoadRejectsDatasetWithoutArchive(t *testing.T) {
	path := writeConfig(t, `
datasets:
  synthea:
    primary_resource_type: Patient
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
