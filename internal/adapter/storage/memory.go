package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Repository[domain.Product] = (*Memory[domain.Product])(nil)

type cloner[T any] interface {
	Clone() T
}

// A Memory is a volatile [port.Repository] backed by a map.
//
// Values implementing Clone() T are copied on the way in and out so callers
// never share slices with the stored record.
type Memory[T any] struct {
	name string

	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewMemory[T any](name string) *Memory[T] {
	return &Memory[T]{name: name, items: make(map[string]T)}
}

func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	op := m.name + ".Get"
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	v, ok := m.items[id]
	m.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return clone(v), nil
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	op := m.name + ".List"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	vs := make([]T, 0, len(m.order))
	for _, id := range m.order {
		vs = append(vs, clone(m.items[id]))
	}
	return vs, nil
}

func (m *Memory[T]) Put(ctx context.Context, id string, v T) error {
	op := m.name + ".Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		m.order = append(m.order, id)
	}
	m.items[id] = clone(v)
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	op := m.name + ".Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	delete(m.items, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })
	return nil
}

func clone[T any](v T) T {
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	return v
}
