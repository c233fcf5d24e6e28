package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	collection, id string
	data           []byte
}

// fakeDB mimics the documents table for the queries issued by Documents.
type fakeDB struct {
	rows []row
	err  error
}

type result int64

func (r result) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (r result) RowsAffected() (int64, error) { return int64(r), nil }

func (f *fakeDB) find(collection, id string) int {
	for i, r := range f.rows {
		if r.collection == collection && r.id == id {
			return i
		}
	}
	return -1
}

func (f *fakeDB) GetContext(_ context.Context, dest any, query string, args ...any) error {
	if f.err != nil {
		return f.err
	}
	i := f.find(args[0].(string), args[1].(string))
	if i < 0 {
		return sql.ErrNoRows
	}
	*dest.(*[]byte) = f.rows[i].data
	return nil
}

func (f *fakeDB) SelectContext(_ context.Context, dest any, query string, args ...any) error {
	if f.err != nil {
		return f.err
	}
	out := dest.(*[][]byte)
	for _, r := range f.rows {
		if r.collection == args[0].(string) {
			*out = append(*out, r.data)
		}
	}
	return nil
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	collection, id := args[0].(string), args[1].(string)
	i := f.find(collection, id)
	if query == deleteQuery {
		if i < 0 {
			return result(0), nil
		}
		f.rows = append(f.rows[:i], f.rows[i+1:]...)
		return result(1), nil
	}
	data := []byte(args[2].(string))
	if i < 0 {
		f.rows = append(f.rows, row{collection, id, data})
	} else {
		f.rows[i].data = data
	}
	return result(1), nil
}

func TestDocuments(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	order := domain.Order{
		ID:            "o1",
		UserID:        "u1",
		Status:        domain.OrderPending,
		Subtotal:      decimal.RequireFromString("1500"),
		TotalAmount:   decimal.RequireFromString("1650"),
		PaymentMethod: domain.PaymentCOD,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     created,
	}

	t.Run("PutGet", func(t *testing.T) {
		db := new(fakeDB)
		docs := NewDocuments[domain.Order](db, "orders")

		require.NoError(t, docs.Put(t.Context(), order.ID, order))

		got, err := docs.Get(t.Context(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
		assert.True(t, order.TotalAmount.Equal(got.TotalAmount))
		assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, domain.PaymentCOD, got.PaymentMethod)
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		db := new(fakeDB)
		orders := NewDocuments[domain.Order](db, "orders")
		other := NewDocuments[domain.Order](db, "archive")

		require.NoError(t, orders.Put(t.Context(), order.ID, order))

		_, err := other.Get(t.Context(), order.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		vs, err := other.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("Delete", func(t *testing.T) {
		db := new(fakeDB)
		docs := NewDocuments[domain.Order](db, "orders")
		require.NoError(t, docs.Put(t.Context(), order.ID, order))

		require.NoError(t, docs.Delete(t.Context(), order.ID))
		assert.ErrorIs(t, docs.Delete(t.Context(), order.ID), domain.ErrNotFound)
	})

	t.Run("DriverError", func(t *testing.T) {
		boom := errors.New("connection reset")
		docs := NewDocuments[domain.Order](&fakeDB{err: boom}, "orders")

		_, err := docs.Get(t.Context(), "o1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}
