package repository

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"

	"restaurant-service/prometheus"
)

// Memory is a mutex guarded in-process store. Values are cloned on the way
// in and out so callers never share memory with the store.
type Memory[T Entity[T]] struct {
	name  string
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewMemory returns an empty store; name labels metrics and errors.
func NewMemory[T Entity[T]](name string) *Memory[T] {
	return &Memory[T]{
		name:  name,
		items: make(map[string]T),
	}
}

// Get implements Repository.
func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	defer prometheus.TrackStoreOperation(m.name, "get")(time.Now())

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		var zero T
		return zero, errors.NotFoundf("%s %q", m.name, id)
	}
	return item.Clone(), nil
}

// List implements Repository.
func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	defer prometheus.TrackStoreOperation(m.name, "list")(time.Now())

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Clone())
	}
	return out, nil
}

// Save implements Repository.
func (m *Memory[T]) Save(_ context.Context, entity T) error {
	defer prometheus.TrackStoreOperation(m.name, "save")(time.Now())

	id := entity.EntityID()
	if id == "" {
		return errors.NotValidf("%s without id", m.name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		m.order = append(m.order, id)
	}
	m.items[id] = entity.Clone()
	return nil
}

// Delete implements Repository.
func (m *Memory[T]) Delete(_ context.Context, id string) error {
	defer prometheus.TrackStoreOperation(m.name, "delete")(time.Now())

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
