package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Record is a row type managed through a Resource. Columns lists the
// writable columns; id and the timestamps are maintained by the database.
type Record interface {
	Table() string
	Columns() []string
}

// updateColumner narrows the columns an update may touch.
type updateColumner interface {
	UpdateColumns() []string
}

// Resource is the uniform list/get/create/update/delete repository used by
// the admin modules.
type Resource[T any, P interface {
	*T
	Record
}] struct {
	store   *Store
	orderBy string
}

func NewResource[T any, P interface {
	*T
	Record
}](s *Store, orderBy string) *Resource[T, P] {
	if orderBy == "" {
		orderBy = "id DESC"
	}
	return &Resource[T, P]{store: s, orderBy: orderBy}
}

// On returns the same resource bound to another store, typically a transaction.
func (r *Resource[T, P]) On(s *Store) *Resource[T, P] {
	return &Resource[T, P]{store: s, orderBy: r.orderBy}
}

func (r *Resource[T, P]) table() string {
	return P(new(T)).Table()
}

func (r *Resource[T, P]) selectSQL() string {
	cols := P(new(T)).Columns()
	return fmt.Sprintf("SELECT id, %s, created_at, updated_at FROM %s", strings.Join(cols, ", "), r.table())
}

func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	return r.ListWhere(ctx, "", nil)
}

// ListWhere lists rows matching a raw condition such as "is_active = ?".
func (r *Resource[T, P]) ListWhere(ctx context.Context, where string, args []any) ([]T, error) {
	query := r.selectSQL()
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + r.orderBy

	items := []T{}
	if err := sqlx.SelectContext(ctx, r.store.ext, &items, r.store.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table(), err)
	}
	return items, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id int64) (P, error) {
	item := P(new(T))
	if err := sqlx.GetContext(ctx, r.store.ext, item, r.selectSQL()+" WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// GetForUpdate is Get with a row lock; only meaningful inside WithTx.
func (r *Resource[T, P]) GetForUpdate(ctx context.Context, id int64) (P, error) {
	item := P(new(T))
	if err := sqlx.GetContext(ctx, r.store.ext, item, r.selectSQL()+" WHERE id = ? FOR UPDATE", id); err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// Create inserts item and reloads it so generated fields are populated.
func (r *Resource[T, P]) Create(ctx context.Context, item P) error {
	cols := item.Columns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		item.Table(), strings.Join(cols, ", "), strings.Join(cols, ", :"))

	res, err := sqlx.NamedExecContext(ctx, r.store.ext, query, item)
	if err != nil {
		return conflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, r.store.ext, item, r.selectSQL()+" WHERE id = ?", id)
}

// Update writes item's columns to row id and reloads it.
func (r *Resource[T, P]) Update(ctx context.Context, id int64, item P) error {
	cols := item.Columns()
	if uc, ok := any(item).(updateColumner); ok {
		cols = uc.UpdateColumns()
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = :" + c
	}

	query, args, err := sqlx.Named(fmt.Sprintf("UPDATE %s SET %s", item.Table(), strings.Join(sets, ", ")), item)
	if err != nil {
		return err
	}
	query += " WHERE id = ?"
	args = append(args, id)

	if err := expectOne(r.store.ext.ExecContext(ctx, r.store.ext.Rebind(query), args...)); err != nil {
		return conflict(err)
	}
	return notFound(sqlx.GetContext(ctx, r.store.ext, item, r.selectSQL()+" WHERE id = ?", id))
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	return expectOne(r.store.ext.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table()), id))
}
