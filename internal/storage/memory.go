package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/todos-api/internal/todo"
)

// Memory keeps todos in process memory. Every mutation holds the write
// lock, so the (title, due) check and the insert are one atomic step.
type Memory struct {
	mu     sync.RWMutex
	lastID int64
	items  map[int64]todo.Todo
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[int64]todo.Todo), now: time.Now}
}

func (m *Memory) Create(_ context.Context, t todo.Todo) (todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.duplicate(0, t.Title, t.Due) {
		return todo.Todo{}, todo.ErrConflict
	}
	m.lastID++
	now := m.now().UTC()
	t.ID = m.lastID
	t.CreatedAt = now
	t.UpdatedAt = now
	m.items[t.ID] = t
	return t, nil
}

func (m *Memory) Get(_ context.Context, id int64) (todo.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.items[id]
	if !ok {
		return todo.Todo{}, todo.ErrNotFound
	}
	return t, nil
}

func (m *Memory) ExistsByTitleAndDue(_ context.Context, title string, due todo.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duplicate(0, title, due), nil
}

func (m *Memory) Update(_ context.Context, t todo.Todo) (todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.items[t.ID]
	if !ok {
		return todo.Todo{}, todo.ErrNotFound
	}
	if m.duplicate(t.ID, t.Title, t.Due) {
		return todo.Todo{}, todo.ErrConflict
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = m.now().UTC()
	m.items[t.ID] = t
	return t, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return todo.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) List(_ context.Context, p todo.Projection) ([]todo.Todo, error) {
	m.mu.RLock()
	out := make([]todo.Todo, 0, len(m.items))
	for _, t := range m.items {
		if p == todo.ProjectSummary {
			t = todo.Todo{ID: t.ID, Title: t.Title}
		}
		out = append(out, t)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// duplicate reports whether a record other than skipID holds (title, due).
// Callers hold the lock.
func (m *Memory) duplicate(skipID int64, title string, due todo.Date) bool {
	for id, t := range m.items {
		if id != skipID && t.Title == title && t.Due.Equal(due) {
			return true
		}
	}
	return false
}
