package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/couchbase/gocb/v2"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	err := translateError(fmt.Errorf("wrapped: %w", gocb.ErrDocumentExists))
	assert.ErrorIs(t, err, ErrDocumentExists)

	err = translateError(fmt.Errorf("wrapped: %w", gocb.ErrDocumentNotFound))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	opaque := errors.New("boom")
	assert.Equal(t, opaque, translateError(opaque))
}

func TestManagerUnknownConnection(t *testing.T) {
	m := NewManager()

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Resolve("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.Close("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, m.List())
}
