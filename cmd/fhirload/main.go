package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jdoherty/fhir-admin/config"
	"github.com/jdoherty/fhir-admin/internal/dataset"
	"github.com/jdoherty/fhir-admin/internal/fhir"
	"github.com/jdoherty/fhir-admin/internal/sampledata"
	"github.com/jdoherty/fhir-admin/internal/store"
	"github.com/jdoherty/fhir-admin/internal/users"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	connectionName := flag.String("connection", "", "Registered connection name (required)")
	bucketName := flag.String("bucket", "", "Target bucket (required)")
	sampleType := flag.String("sample-type", "synthea", "Dataset selector (synthea or us-core)")
	workers := flag.Int("workers", 0, "Maximum concurrent tasks (defaults to config)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *connectionName == "" {
		log.Fatal("Missing required flag: -connection")
	}
	if *bucketName == "" {
		log.Fatal("Missing required flag: -bucket")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Keep structured logs off the terminal so the bar stays readable.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	connections := store.NewManager()
	defer connections.CloseAll()

	registered := false
	for _, conn := range cfg.Store.Connections {
		if conn.Name != *connectionName {
			continue
		}
		if err := connections.Register(context.Background(), conn); err != nil {
			log.Fatalf("Failed to connect to %q: %v", conn.Name, err)
		}
		registered = true
	}
	if !registered {
		log.Fatalf("Connection %q not found in configuration", *connectionName)
	}

	maxTasks := cfg.Loader.MaxConcurrentTasks
	if *workers > 0 {
		maxTasks = *workers
	}

	catalog := dataset.NewCatalog(cfg.Datasets)
	userService := users.NewService(connections)
	samples := sampledata.NewService(
		connections, catalog,
		fhir.NewBundleProcessor(), fhir.NewResourceProcessor(),
		userService, maxTasks,
	)

	var bar *progressbar.ProgressBar
	reporter := sampledata.ReporterFunc(func(p sampledata.Progress) {
		if bar == nil && p.TotalFiles > 0 {
			bar = progressbar.NewOptions(
				p.TotalFiles,
				progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Loading sample data...[reset]"),
			)
		}
		if bar != nil {
			_ = bar.Set(p.ProcessedFiles)
		}
	})

	result := samples.LoadWithProgress(context.Background(), sampledata.Request{
		ConnectionName: *connectionName,
		BucketName:     *bucketName,
		SampleType:     *sampleType,
	}, reporter)

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if !result.Success {
		log.Fatal(result.Message)
	}

	fmt.Printf("Loaded %d resources (%d patients) into %s\n",
		result.ResourcesLoaded, result.PatientsLoaded, result.BucketName)
}
