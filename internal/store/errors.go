package store

import (
	"errors"

	"github.com/couchbase/gocb/v2"
)

var (
	ErrNotFound         = errors.New("connection not found")
	ErrAlreadyExists    = errors.New("connection already exists")
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document not found")
)

// translateError maps SDK errors onto this package's sentinels so callers
// never import gocb directly.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gocb.ErrDocumentExists):
		return ErrDocumentExists
	case errors.Is(err, gocb.ErrDocumentNotFound):
		return ErrDocumentNotFound
	default:
		return err
	}
}
