package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Repository[domain.Order] = (*Documents[domain.Order])(nil)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	getQuery = `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2;`

	listQuery = `
		SELECT data FROM documents
		WHERE collection = $1
		ORDER BY seq ASC;`

	putQuery = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now();`

	deleteQuery = `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2;`
)

// A Documents is a [port.Repository] persisting records as JSONB rows of the
// documents table, one collection per record type.
type Documents[T any] struct {
	sqldb      sqldb
	collection string
}

func NewDocuments[T any](db sqldb, collection string) Documents[T] {
	return Documents[T]{sqldb: db, collection: collection}
}

func (d Documents[T]) Get(ctx context.Context, id string) (T, error) {
	const op = "Documents.Get"
	var zero T

	var raw []byte
	err := d.sqldb.GetContext(ctx, &raw, getQuery, d.collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s: %s: %w", op, d.collection, domain.ErrNotFound)
		}
		return zero, fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}

	var v T
	if err := codec.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}
	return v, nil
}

func (d Documents[T]) List(ctx context.Context) ([]T, error) {
	const op = "Documents.List"

	var raws [][]byte
	err := d.sqldb.SelectContext(ctx, &raws, listQuery, d.collection)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}

	vs := make([]T, len(raws))
	for i, raw := range raws {
		if err := codec.Unmarshal(raw, &vs[i]); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, d.collection, err)
		}
	}
	return vs, nil
}

func (d Documents[T]) Put(ctx context.Context, id string, v T) error {
	const op = "Documents.Put"

	raw, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}

	_, err = d.sqldb.ExecContext(ctx, putQuery, d.collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}
	return nil
}

func (d Documents[T]) Delete(ctx context.Context, id string) error {
	const op = "Documents.Delete"

	res, err := d.sqldb.ExecContext(ctx, deleteQuery, d.collection, id)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, d.collection, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s: %w", op, d.collection, domain.ErrNotFound)
	}
	return nil
}
