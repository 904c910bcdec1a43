package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPrefix = "gs://"

// readArchive fetches the raw archive bytes from a local path or a gs://
// object. Sample archives are small enough to hold in memory, which also
// gives the zip reader the io.ReaderAt it needs.
func readArchive(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, gcsPrefix) {
		return readGCSObject(ctx, path)
	}
	return os.ReadFile(path)
}

func readGCSObject(ctx context.Context, path string) ([]byte, error) {
	bucket, object, err := splitGCSPath(path)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	defer client.Close()

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func splitGCSPath(path string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(path, gcsPrefix)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS archive path: %s", path)
	}
	return parts[0], parts[1], nil
}

// archiveExists probes whether the archive can be opened at all.
func archiveExists(ctx context.Context, path string) bool {
	if !strings.HasPrefix(path, gcsPrefix) {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	}

	bucket, object, err := splitGCSPath(path)
	if err != nil {
		return false
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		slog.Warn("Failed to create GCS client for availability check", "error", err)
		return false
	}
	defer client.Close()

	_, err = client.Bucket(bucket).Object(object).Attrs(ctx)
	return err == nil
}
