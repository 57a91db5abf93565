package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"adreward/internal/core/port"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type index struct {
	column string
	unique bool
}

// schema maps a record type onto a SQL table. columns excludes the id
// column; values must return the column values in the same order and
// scan must read id followed by columns.
type schema[T any] struct {
	table   string
	columns []string
	indexes map[port.Index]index
	values  func(*T) []any
	scan    pgx.RowToFunc[T]
	setID   func(*T, int64)
}

func (s *schema[T]) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(s.columns, ", "), s.table)
}

func (s *schema[T]) insertSQL() string {
	params := make([]string, len(s.columns))
	for i := range s.columns {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.table, strings.Join(s.columns, ", "), strings.Join(params, ", "))
}

func (s *schema[T]) updateSQL() string {
	sets := make([]string, len(s.columns))
	for i, c := range s.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		s.table, strings.Join(sets, ", "), len(s.columns)+1)
}

// table implements port.Table with plain SQL generated from a schema.
type table[T any] struct {
	db     querier
	schema *schema[T]
}

func (t *table[T]) Get(ctx context.Context, id int64) (*T, error) {
	return t.one(ctx, t.schema.selectSQL()+" WHERE id = $1", id)
}

func (t *table[T]) GetAll(ctx context.Context) ([]T, error) {
	return t.many(ctx, t.schema.selectSQL()+" ORDER BY id")
}

func (t *table[T]) GetByIndex(ctx context.Context, name port.Index, value any) (*T, error) {
	idx, err := t.index(name)
	if err != nil {
		return nil, err
	}
	if !idx.unique {
		return nil, fmt.Errorf("%w: %s.%s is not unique", port.ErrUnknownIndex, t.schema.table, name)
	}
	return t.one(ctx, fmt.Sprintf("%s WHERE %s = $1", t.schema.selectSQL(), idx.column), value)
}

func (t *table[T]) GetAllByIndex(ctx context.Context, name port.Index, value any) ([]T, error) {
	idx, err := t.index(name)
	if err != nil {
		return nil, err
	}
	return t.many(ctx, fmt.Sprintf("%s WHERE %s = $1 ORDER BY id", t.schema.selectSQL(), idx.column), value)
}

func (t *table[T]) Add(ctx context.Context, rec *T) (int64, error) {
	var id int64
	err := t.db.QueryRow(ctx, t.schema.insertSQL(), t.schema.values(rec)...).Scan(&id)
	if err != nil {
		return 0, translate(err)
	}
	t.schema.setID(rec, id)
	return id, nil
}

// Update locks the row, applies fn and writes every column back.
func (t *table[T]) Update(ctx context.Context, id int64, fn func(*T) error) (rec *T, err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else if err = tx.Commit(ctx); err != nil {
			rec = nil
		}
	}()

	rows, err := tx.Query(ctx, t.schema.selectSQL()+" WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return nil, err
	}
	cur, err := pgx.CollectExactlyOneRow(rows, t.schema.scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err = fn(&cur); err != nil {
		return nil, err
	}
	t.schema.setID(&cur, id)
	if _, err = tx.Exec(ctx, t.schema.updateSQL(), append(t.schema.values(&cur), id)...); err != nil {
		return nil, translate(err)
	}
	return &cur, nil
}

func (t *table[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := t.db.QueryRow(ctx, "SELECT count(*) FROM "+t.schema.table).Scan(&n)
	return n, err
}

func (t *table[T]) one(ctx context.Context, query string, args ...any) (*T, error) {
	rows, err := t.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectExactlyOneRow(rows, t.schema.scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t *table[T]) many(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := t.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, t.schema.scan)
}

func (t *table[T]) index(name port.Index) (index, error) {
	idx, ok := t.schema.indexes[name]
	if !ok {
		return idx, fmt.Errorf("%w: %s.%s", port.ErrUnknownIndex, t.schema.table, name)
	}
	return idx, nil
}

// translate maps driver errors onto the store port errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", port.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
