package service

import (
	"context"

	"example.com/todos-api/internal/todo"
)

// Store is the persistence collaborator. Implementations return
// todo.ErrNotFound for unknown ids and todo.ErrConflict when a write would
// duplicate another record's (title, due) pair.
type Store interface {
	Create(ctx context.Context, t todo.Todo) (todo.Todo, error)
	Get(ctx context.Context, id int64) (todo.Todo, error)
	ExistsByTitleAndDue(ctx context.Context, title string, due todo.Date) (bool, error)
	Update(ctx context.Context, t todo.Todo) (todo.Todo, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p todo.Projection) ([]todo.Todo, error)
}

// Service applies the write rules of the API on top of a Store.
// It holds no state of its own besides the store.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, p todo.Projection) ([]todo.Todo, error) {
	return s.store.List(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (todo.Todo, error) {
	return s.store.Get(ctx, id)
}

// Create requires title and due, rejects a duplicate (title, due) pair and
// then validates every field.
func (s *Service) Create(ctx context.Context, p todo.Params) (todo.Todo, error) {
	if !p.Title.Present() || !p.Due.Present() {
		return todo.Todo{}, &todo.MissingFieldsError{Op: todo.OpCreate, Fields: []string{"title", "due"}}
	}

	due, err := todo.ParseDate(p.Due.Value)
	if err != nil {
		return todo.Todo{}, err
	}

	// Check existing. The store's unique constraint still decides races.
	exists, err := s.store.ExistsByTitleAndDue(ctx, p.Title.Value, due)
	if err != nil {
		return todo.Todo{}, err
	}
	if exists {
		return todo.Todo{}, todo.ErrConflict
	}

	t := todo.Todo{Title: p.Title.Value, Due: due, Notes: p.Notes.Value}
	if err := todo.Validate(t); err != nil {
		return todo.Todo{}, err
	}
	return s.store.Create(ctx, t)
}

// Replace overwrites all three writable fields. The notes key must be sent
// but may be empty or null.
func (s *Service) Replace(ctx context.Context, id int64, p todo.Params) (todo.Todo, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return todo.Todo{}, err
	}
	if !p.Title.Present() || !p.Due.Present() || !p.Notes.Set {
		return todo.Todo{}, &todo.MissingFieldsError{Op: todo.OpReplace, Fields: []string{"title", "due", "notes"}}
	}

	due, err := todo.ParseDate(p.Due.Value)
	if err != nil {
		return todo.Todo{}, err
	}
	t.Title = p.Title.Value
	t.Due = due
	t.Notes = p.Notes.Value

	return s.save(ctx, t)
}

// Patch applies only the keys present in p. An explicit empty string or
// null is an update, not an omission.
func (s *Service) Patch(ctx context.Context, id int64, p todo.Params) (todo.Todo, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return todo.Todo{}, err
	}

	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Due.Set {
		t.Due = todo.Date{}
		if !p.Due.Null {
			if t.Due, err = todo.ParseDate(p.Due.Value); err != nil {
				return todo.Todo{}, err
			}
		}
	}
	if p.Notes.Set {
		t.Notes = p.Notes.Value
	}

	return s.save(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) save(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if err := todo.Validate(t); err != nil {
		return todo.Todo{}, err
	}
	return s.store.Update(ctx, t)
}
