package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server   ServerConfig             `yaml:"server"`
	Store    StoreConfig              `yaml:"store"`
	Loader   LoaderConfig             `yaml:"loader"`
	Datasets map[string]DatasetConfig `yaml:"datasets"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StoreConfig struct {
	// Connections registered at startup. More can be added at runtime
	// through the connections API.
	Connections []ConnectionConfig `yaml:"connections"`
}

type ConnectionConfig struct {
	Name             string `yaml:"name" json:"name"`
	ConnectionString string `yaml:"connection_string" json:"connectionString"`
	Username         string `yaml:"username" json:"username"`
	Password         string `yaml:"password" json:"password"`
	Bucket           string `yaml:"bucket" json:"bucket"`
}

type LoaderConfig struct {
	// MaxConcurrentTasks bounds the worker pool used during sample data
	// loads. Managed clusters (e.g. Capella) throttle aggressive clients,
	// so this stays deliberately low.
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`
}

type DatasetConfig struct {
	// Archive is a local path or a gs:// object holding the zipped sample
	// resources.
	Archive string `yaml:"archive"`

	// PrimaryResourceType is counted separately in load reports.
	PrimaryResourceType string `yaml:"primary_resource_type"`

	// CreateTestUsers provisions the demo Patient/Practitioner users after
	// a successful load of this dataset.
	CreateTestUsers bool `yaml:"create_test_users"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Loader.MaxConcurrentTasks <= 0 {
		config.Loader.MaxConcurrentTasks = 6
	}

	if len(config.Datasets) == 0 {
		config.Datasets = DefaultDatasets()
	}

	for name, ds := range config.Datasets {
		if ds.Archive == "" {
			return nil, fmt.Errorf("dataset %q has no archive path", name)
		}
		if ds.PrimaryResourceType == "" {
			ds.PrimaryResourceType = "Patient"
			config.Datasets[name] = ds
		}
	}

	return config, nil
}

// DefaultDatasets mirrors the sample archives shipped with the server.
func DefaultDatasets() map[string]DatasetConfig {
	return map[string]DatasetConfig{
		"synthea": {
			Archive:             "sample-data/synthea-patients-sample.zip",
			PrimaryResourceType: "Patient",
		},
		"us-core": {
			Archive:             "sample-data/us-core-examples.zip",
			PrimaryResourceType: "Patient",
			CreateTestUsers:     true,
		},
	}
}
