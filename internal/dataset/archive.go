package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Entry is one eligible archive member, read fully into memory.
type Entry struct {
	Name string
	Data []byte
}

// ReadEntries opens the archive and returns every eligible entry in archive
// order. An unreadable archive is a run-level failure; a single entry that
// cannot be decompressed is logged and skipped.
func ReadEntries(ctx context.Context, archivePath string) ([]Entry, error) {
	raw, err := readArchive(ctx, archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample archive %s: %w", archivePath, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to read sample archive %s: %w", archivePath, err)
	}

	var entries []Entry
	for _, file := range reader.File {
		if !ShouldProcess(file.Name, file.FileInfo().IsDir()) {
			continue
		}

		data, err := readZipFile(file)
		if err != nil {
			slog.Error("Skipping unreadable archive entry", "entry", file.Name, "error", err)
			continue
		}

		entries = append(entries, Entry{Name: file.Name, Data: data})
	}

	return entries, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
