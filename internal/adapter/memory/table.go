package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"adreward/internal/core/port"
)

type index[T any] struct {
	unique bool
	key    func(*T) any
}

// schema describes how records of one table are identified and indexed.
type schema[T any] struct {
	name    string
	setID   func(*T, int64)
	indexes map[port.Index]index[T]
}

// rows holds the records of one table keyed by id.
type rows[T any] struct {
	seq   int64
	items map[int64]T
}

func newRows[T any]() *rows[T] {
	return &rows[T]{items: make(map[int64]T)}
}

func (r *rows[T]) clone() *rows[T] {
	return &rows[T]{seq: r.seq, items: maps.Clone(r.items)}
}

// table implements port.Table over the rows selected from the store state.
type table[T any] struct {
	store  *Store
	schema *schema[T]
	rows   func(*state) *rows[T]
}

func (t *table[T]) data() *rows[T] {
	return t.rows(t.store.state)
}

func (t *table[T]) Get(_ context.Context, id int64) (*T, error) {
	unlock := t.store.lock()
	defer unlock()

	rec, ok := t.data().items[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t *table[T]) GetAll(_ context.Context) ([]T, error) {
	unlock := t.store.lock()
	defer unlock()

	items := t.data().items
	out := make([]T, 0, len(items))
	for _, id := range slices.Sorted(maps.Keys(items)) {
		out = append(out, items[id])
	}
	return out, nil
}

func (t *table[T]) GetByIndex(_ context.Context, name port.Index, value any) (*T, error) {
	idx, err := t.index(name)
	if err != nil {
		return nil, err
	}
	if !idx.unique {
		return nil, fmt.Errorf("%w: %s.%s is not unique", port.ErrUnknownIndex, t.schema.name, name)
	}

	unlock := t.store.lock()
	defer unlock()

	want := indexKey(value)
	for _, rec := range t.data().items {
		if indexKey(idx.key(&rec)) == want {
			return &rec, nil
		}
	}
	return nil, nil
}

func (t *table[T]) GetAllByIndex(_ context.Context, name port.Index, value any) ([]T, error) {
	idx, err := t.index(name)
	if err != nil {
		return nil, err
	}

	unlock := t.store.lock()
	defer unlock()

	items := t.data().items
	want := indexKey(value)
	var out []T
	for _, id := range slices.Sorted(maps.Keys(items)) {
		rec := items[id]
		if indexKey(idx.key(&rec)) == want {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (t *table[T]) Add(_ context.Context, rec *T) (int64, error) {
	unlock := t.store.lock()
	defer unlock()

	data := t.data()
	if err := t.checkUnique(data, rec, 0); err != nil {
		return 0, err
	}
	data.seq++
	t.schema.setID(rec, data.seq)
	data.items[data.seq] = *rec
	return data.seq, nil
}

func (t *table[T]) Update(_ context.Context, id int64, fn func(*T) error) (*T, error) {
	unlock := t.store.lock()
	defer unlock()

	data := t.data()
	cur, ok := data.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	if err := fn(&cur); err != nil {
		return nil, err
	}
	t.schema.setID(&cur, id)
	if err := t.checkUnique(data, &cur, id); err != nil {
		return nil, err
	}
	data.items[id] = cur
	return &cur, nil
}

func (t *table[T]) Count(_ context.Context) (int64, error) {
	unlock := t.store.lock()
	defer unlock()

	return int64(len(t.data().items)), nil
}

func (t *table[T]) index(name port.Index) (index[T], error) {
	idx, ok := t.schema.indexes[name]
	if !ok {
		return idx, fmt.Errorf("%w: %s.%s", port.ErrUnknownIndex, t.schema.name, name)
	}
	return idx, nil
}

// checkUnique reports ErrDuplicate when rec collides with a record other
// than self on a unique index.
func (t *table[T]) checkUnique(data *rows[T], rec *T, self int64) error {
	for name, idx := range t.schema.indexes {
		if !idx.unique {
			continue
		}
		key := indexKey(idx.key(rec))
		for id, other := range data.items {
			if id != self && indexKey(idx.key(&other)) == key {
				return fmt.Errorf("%w: %s.%s = %s", port.ErrDuplicate, t.schema.name, name, key)
			}
		}
	}
	return nil
}

// indexKey normalises index values so that e.g. int and int64 ids match.
func indexKey(v any) string {
	return fmt.Sprint(v)
}
