package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jdoherty/fhir-admin/config"
	"github.com/jdoherty/fhir-admin/internal/dataset"
	"github.com/jdoherty/fhir-admin/internal/fhir"
	"github.com/jdoherty/fhir-admin/internal/sampledata"
	"github.com/jdoherty/fhir-admin/internal/search"
	"github.com/jdoherty/fhir-admin/internal/server"
	"github.com/jdoherty/fhir-admin/internal/store"
	"github.com/jdoherty/fhir-admin/internal/users"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	// Register bootstrap connections. A cluster that is down at startup is
	// logged and skipped; it can be re-registered through the API.
	connections := store.NewManager()
	defer connections.CloseAll()
	for _, conn := range cfg.Store.Connections {
		if err := connections.Register(context.Background(), conn); err != nil {
			slog.Warn("Failed to register connection", "name", conn.Name, "error", err)
		}
	}

	catalog := dataset.NewCatalog(cfg.Datasets)
	userService := users.NewService(connections)
	samples := sampledata.NewService(
		connections, catalog,
		fhir.NewBundleProcessor(), fhir.NewResourceProcessor(),
		userService, cfg.Loader.MaxConcurrentTasks,
	)

	srv := server.New(cfg, connections, samples, userService, search.NewService(connections))

	listenPort := *port
	if listenPort == "" {
		listenPort = cfg.Server.Port
	}

	slog.Info("Starting FHIR admin API server", "port", listenPort)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
