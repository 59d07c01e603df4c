// Package storetest provides an in-memory repository with the same contract as
// store.Collection, for handler tests that must not need a live MongoDB.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"hospitality/store"

	"go.mongodb.org/mongo-driver/bson"
)

type Memory[T any] struct {
	mu    sync.Mutex
	idOf  func(T) string
	docs  map[string]T
	order []string

	// Err, when set, is returned by every call.
	Err error
}

func NewMemory[T any](idOf func(T) string) *Memory[T] {
	return &Memory[T]{idOf: idOf, docs: make(map[string]T)}
}

func (m *Memory[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	return m.FindWith(ctx, filter, store.FindOptions{})
}

// FindWith matches top-level equality filters; Sort is ignored, insertion order is kept.
func (m *Memory[T]) FindWith(_ context.Context, filter bson.M, fo store.FindOptions) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []T{}
	for _, id := range m.order {
		doc := m.docs[id]
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	if fo.Skip > 0 {
		if fo.Skip >= int64(len(out)) {
			return []T{}, nil
		}
		out = out[fo.Skip:]
	}
	if fo.Limit > 0 && int64(len(out)) > fo.Limit {
		out = out[:fo.Limit]
	}
	return out, nil
}

func (m *Memory[T]) FindByID(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.Err != nil {
		return zero, m.Err
	}
	doc, ok := m.docs[id]
	if !ok {
		return zero, store.ErrNotFound
	}
	return doc, nil
}

func (m *Memory[T]) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.docs[id]
	return ok, nil
}

func (m *Memory[T]) Insert(_ context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	id := m.idOf(doc)
	if _, ok := m.docs[id]; ok {
		return fmt.Errorf("insert %s: %w", id, store.ErrDuplicate)
	}
	m.docs[id] = doc
	m.order = append(m.order, id)
	return nil
}

func (m *Memory[T]) Replace(_ context.Context, id string, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	m.docs[id] = doc
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	m.remove(id)
	return nil
}

func (m *Memory[T]) DeleteMany(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, id := range append([]string(nil), m.order...) {
		ok, err := matches(m.docs[id], filter)
		if err != nil {
			return n, err
		}
		if ok {
			m.remove(id)
			n++
		}
	}
	return n, nil
}

// Update applies fn to every stored document.
func (m *Memory[T]) Update(fn func(T) T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, doc := range m.docs {
		m.docs[id] = fn(doc)
	}
}

func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *Memory[T]) remove(id string) {
	delete(m.docs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// matches compares filter values against the document's bson form by string value.
func matches(doc any, filter bson.M) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return false, err
	}
	for k, want := range filter {
		got, ok := fields[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false, nil
		}
	}
	return true, nil
}
