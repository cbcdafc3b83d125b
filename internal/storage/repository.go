package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"example.com/todos-api/internal/db"
	"example.com/todos-api/internal/todo"
)

const columns = `id, title, due, notes, created_at, updated_at`

// Repository stores todos in SQLite or PostgreSQL through database/sql.
type Repository struct {
	db     *sql.DB
	driver db.Driver
	now    func() time.Time

	stmtGet    *sql.Stmt
	stmtExists *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

func NewRepository(ctx context.Context, conn *db.DB) (*Repository, error) {
	r := &Repository{db: conn.SQL, driver: conn.Driver, now: time.Now}

	var err error
	prepare := func(query string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var s *sql.Stmt
		s, err = conn.SQL.PrepareContext(ctx, conn.Driver.Rebind(query))
		return s
	}

	r.stmtGet = prepare(`SELECT ` + columns + ` FROM todos WHERE id = ?`)
	r.stmtExists = prepare(`SELECT EXISTS (SELECT 1 FROM todos WHERE title = ? AND due = ?)`)
	r.stmtUpdate = prepare(`
		UPDATE todos
		SET title = ?, due = ?, notes = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + columns)
	r.stmtDelete = prepare(`DELETE FROM todos WHERE id = ?`)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("prepare todo statements: %w", err)
	}
	return r, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtExists, r.stmtUpdate, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

// Create inserts t. A duplicate (title, due) is rejected by the table's
// unique constraint and reported as todo.ErrConflict.
func (r *Repository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	now := r.driver.TimeArg(r.now())
	row := r.db.QueryRowContext(ctx, r.driver.Rebind(`
		INSERT INTO todos (title, due, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+columns), t.Title, t.Due, t.Notes, now, now)

	out, err := scanTodo(row)
	if err != nil {
		return todo.Todo{}, translate("insert todo", err)
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (todo.Todo, error) {
	t, err := scanTodo(r.stmtGet.QueryRowContext(ctx, id))
	if err != nil {
		return todo.Todo{}, translate("get todo", err)
	}
	return t, nil
}

func (r *Repository) ExistsByTitleAndDue(ctx context.Context, title string, due todo.Date) (bool, error) {
	var exists bool
	if err := r.stmtExists.QueryRowContext(ctx, title, due).Scan(&exists); err != nil {
		return false, fmt.Errorf("check todo exists: %w", err)
	}
	return exists, nil
}

func (r *Repository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	out, err := scanTodo(r.stmtUpdate.QueryRowContext(ctx,
		t.Title, t.Due, t.Notes, r.driver.TimeArg(r.now()), t.ID))
	if err != nil {
		return todo.Todo{}, translate("update todo", err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.stmtDelete.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return todo.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, p todo.Projection) ([]todo.Todo, error) {
	if p == todo.ProjectSummary {
		rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM todos ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("list todos: %w", err)
		}
		defer rows.Close()

		out := make([]todo.Todo, 0, 32)
		for rows.Next() {
			var t todo.Todo
			if err := rows.Scan(&t.ID, &t.Title); err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, rows.Err()
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	out := make([]todo.Todo, 0, 32)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Reset deletes every todo and reports how many were removed.
func (r *Repository) Reset(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("delete todos: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (todo.Todo, error) {
	var t todo.Todo
	err := s.Scan(&t.ID, &t.Title, &t.Due, &t.Notes, timestamp{&t.CreatedAt}, timestamp{&t.UpdatedAt})
	return t, err
}

// timestamp scans TIMESTAMPTZ values as well as the RFC 3339 text SQLite
// keeps them in.
type timestamp struct {
	dst *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts.dst = time.Time{}
	case time.Time:
		*ts.dst = v.UTC()
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("storage: cannot scan %T into timestamp", src)
	}
	return nil
}

func (ts timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*ts.dst = t.UTC()
	return nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return todo.ErrNotFound
	case isUniqueViolation(err):
		return todo.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// base code when extended result codes are off
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
