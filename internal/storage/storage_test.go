package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/todos-api/internal/db"
	"example.com/todos-api/internal/service"
	"example.com/todos-api/internal/todo"
)

var (
	_ service.Store = (*Memory)(nil)
	_ service.Store = (*Repository)(nil)
)

func newSQLite(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "todos.db"), db.Pool{MaxOpenConns: 8, MaxIdleConns: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.EnsureSchema(ctx))

	repo, err := NewRepository(ctx, conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func stores(t *testing.T) map[string]func(t *testing.T) service.Store {
	return map[string]func(t *testing.T) service.Store{
		"memory": func(*testing.T) service.Store { return NewMemory() },
		"sqlite": func(t *testing.T) service.Store { return newSQLite(t) },
	}
}

func TestStore_CRUD(t *testing.T) {
	due := todo.NewDate(2025, time.December, 31)

	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			created, err := s.Create(ctx, todo.Todo{Title: "Get Me", Due: due, Notes: "n"})
			require.NoError(t, err)
			require.NotZero(t, created.ID)
			require.False(t, created.CreatedAt.IsZero())
			require.Equal(t, created.CreatedAt, created.UpdatedAt)

			got, err := s.Get(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, "Get Me", got.Title)
			require.Equal(t, "2025-12-31", got.Due.String())
			require.Equal(t, "n", got.Notes)

			exists, err := s.ExistsByTitleAndDue(ctx, "Get Me", due)
			require.NoError(t, err)
			require.True(t, exists)
			exists, err = s.ExistsByTitleAndDue(ctx, "Get Me", todo.NewDate(2026, time.January, 1))
			require.NoError(t, err)
			require.False(t, exists)

			got.Title = "Renamed"
			got.Notes = ""
			updated, err := s.Update(ctx, got)
			require.NoError(t, err)
			require.Equal(t, created.ID, updated.ID)
			require.Equal(t, "Renamed", updated.Title)
			require.Equal(t, "", updated.Notes)
			require.True(t, updated.CreatedAt.Equal(created.CreatedAt))

			require.NoError(t, s.Delete(ctx, created.ID))
			_, err = s.Get(ctx, created.ID)
			require.ErrorIs(t, err, todo.ErrNotFound)
			require.ErrorIs(t, s.Delete(ctx, created.ID), todo.ErrNotFound)

			_, err = s.Update(ctx, todo.Todo{ID: 99999, Title: "x", Due: due})
			require.ErrorIs(t, err, todo.ErrNotFound)
		})
	}
}

func TestStore_UniqueTitleAndDue(t *testing.T) {
	due := todo.NewDate(2025, time.November, 15)

	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			first, err := s.Create(ctx, todo.Todo{Title: "Same Title", Due: due})
			require.NoError(t, err)

			_, err = s.Create(ctx, todo.Todo{Title: "Same Title", Due: due, Notes: "different notes"})
			require.ErrorIs(t, err, todo.ErrConflict)

			other, err := s.Create(ctx, todo.Todo{Title: "Same Title", Due: todo.NewDate(2025, time.November, 16)})
			require.NoError(t, err)

			other.Due = due
			_, err = s.Update(ctx, other)
			require.ErrorIs(t, err, todo.ErrConflict)

			// updating a record onto its own pair is not a conflict
			_, err = s.Update(ctx, first)
			require.NoError(t, err)
		})
	}
}

func TestStore_ConcurrentCreateSamePair(t *testing.T) {
	due := todo.NewDate(2025, time.December, 24)

	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			const n = 8
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				conflicts int
			)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Create(ctx, todo.Todo{Title: "race", Due: due})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case err == todo.ErrConflict:
						conflicts++
					}
				}()
			}
			wg.Wait()

			require.Equal(t, 1, succeeded)
			require.Equal(t, n-1, conflicts)
		})
	}
}

func TestStore_ListProjections(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			items, err := s.List(ctx, todo.ProjectFull)
			require.NoError(t, err)
			require.Empty(t, items)

			for i, title := range []string{"a", "b", "c"} {
				_, err := s.Create(ctx, todo.Todo{Title: title, Due: todo.NewDate(2025, time.January, i+1), Notes: "n"})
				require.NoError(t, err)
			}

			full, err := s.List(ctx, todo.ProjectFull)
			require.NoError(t, err)
			require.Len(t, full, 3)
			require.Equal(t, "a", full[0].Title)
			require.Equal(t, "n", full[2].Notes)
			require.False(t, full[1].Due.IsZero())

			summary, err := s.List(ctx, todo.ProjectSummary)
			require.NoError(t, err)
			require.Len(t, summary, 3)
			require.Less(t, summary[0].ID, summary[1].ID)
			require.Equal(t, "b", summary[1].Title)
			require.True(t, summary[1].Due.IsZero())
			require.Empty(t, summary[1].Notes)
		})
	}
}

func TestMemory_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	due := todo.NewDate(2025, time.March, 1)

	a, err := m.Create(ctx, todo.Todo{Title: "a", Due: due})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, a.ID))

	b, err := m.Create(ctx, todo.Todo{Title: "a", Due: due})
	require.NoError(t, err)
	require.Greater(t, b.ID, a.ID)
}

func TestRepository_TimestampsAndReset(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)

	created := time.Date(2025, 10, 24, 16, 38, 12, 0, time.UTC)
	repo.now = func() time.Time { return created }
	item, err := repo.Create(ctx, todo.Todo{Title: "t", Due: todo.NewDate(2025, time.November, 9)})
	require.NoError(t, err)
	require.True(t, item.CreatedAt.Equal(created))

	updated := created.Add(time.Hour)
	repo.now = func() time.Time { return updated }
	item.Notes = "later"
	item, err = repo.Update(ctx, item)
	require.NoError(t, err)
	require.True(t, item.CreatedAt.Equal(created))
	require.True(t, item.UpdatedAt.Equal(updated))

	_, err = repo.Create(ctx, todo.Todo{Title: "u", Due: todo.NewDate(2025, time.November, 9)})
	require.NoError(t, err)

	n, err := repo.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	items, err := repo.List(ctx, todo.ProjectFull)
	require.NoError(t, err)
	require.Empty(t, items)

	// AUTOINCREMENT keeps ids moving forward after a reset
	again, err := repo.Create(ctx, todo.Todo{Title: "t", Due: todo.NewDate(2025, time.November, 9)})
	require.NoError(t, err)
	require.Greater(t, again.ID, int64(2))
}
