package store

import (
	"context"
	"encoding/json"

	"github.com/couchbase/gocb/v2"
)

// DocumentStore is the document-level surface used by the FHIR processors
// and the user service. Implemented by Connection; faked in tests.
type DocumentStore interface {
	Upsert(ctx context.Context, bucket, scope, collection, id string, doc any) error
	Insert(ctx context.Context, bucket, scope, collection, id string, doc any) error
	Get(ctx context.Context, bucket, scope, collection, id string, out any) error
	Exists(ctx context.Context, bucket, scope, collection, id string) (bool, error)
	Query(ctx context.Context, statement string) ([]json.RawMessage, error)
}

// Connection wraps one live cluster connection.
type Connection struct {
	Name   string
	Bucket string

	cluster *gocb.Cluster
}

func (c *Connection) collection(bucket, scope, collection string) *gocb.Collection {
	return c.cluster.Bucket(bucket).Scope(scope).Collection(collection)
}

func (c *Connection) Upsert(ctx context.Context, bucket, scope, collection, id string, doc any) error {
	_, err := c.collection(bucket, scope, collection).Upsert(id, doc, &gocb.UpsertOptions{Context: ctx})
	return translateError(err)
}

func (c *Connection) Insert(ctx context.Context, bucket, scope, collection, id string, doc any) error {
	_, err := c.collection(bucket, scope, collection).Insert(id, doc, &gocb.InsertOptions{Context: ctx})
	return translateError(err)
}

func (c *Connection) Get(ctx context.Context, bucket, scope, collection, id string, out any) error {
	res, err := c.collection(bucket, scope, collection).Get(id, &gocb.GetOptions{Context: ctx})
	if err != nil {
		return translateError(err)
	}
	return res.Content(out)
}

func (c *Connection) Exists(ctx context.Context, bucket, scope, collection, id string) (bool, error) {
	res, err := c.collection(bucket, scope, collection).Exists(id, &gocb.ExistsOptions{Context: ctx})
	if err != nil {
		return false, translateError(err)
	}
	return res.Exists(), nil
}

// Query runs a N1QL statement and returns the raw result rows.
func (c *Connection) Query(ctx context.Context, statement string) ([]json.RawMessage, error) {
	rows, err := c.cluster.Query(statement, &gocb.QueryOptions{Context: ctx})
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var row json.RawMessage
		if err := rows.Row(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SearchIndexes exposes the cluster's FTS index manager.
func (c *Connection) SearchIndexes() *gocb.SearchIndexManager {
	return c.cluster.SearchIndexes()
}
