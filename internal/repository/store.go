package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"studyguard/internal/apperr"
	"studyguard/internal/database"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how one record type maps onto a collection.
type Table[T any] struct {
	Name string
	// Columns lists every column in scan order.
	Columns []string
	// Key is the primary key column.
	Key string
	// AutoKey marks Key as database assigned; it is left out of inserts.
	AutoKey bool
	// Values returns the column values of rec, aligned with Columns.
	Values func(rec *T) []any
	// Scan reads one row, selected with Columns, into rec.
	Scan func(row Scanner, rec *T) error
	// SetKey stores a generated key back into rec. Required when AutoKey is set.
	SetKey func(rec *T, id int64)
}

// Cond is a single column predicate. Conditions passed together are ANDed.
type Cond struct {
	Column string
	Op     string
	Value  any
}

func Eq(column string, value any) Cond  { return Cond{Column: column, Op: "=", Value: value} }
func Lt(column string, value any) Cond  { return Cond{Column: column, Op: "<", Value: value} }
func Gte(column string, value any) Cond { return Cond{Column: column, Op: ">=", Value: value} }

// In matches any of values. An empty list matches nothing.
func In[V any](column string, values []V) Cond {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	return Cond{Column: column, Op: "IN", Value: items}
}

// Order sorts a SelectMany result by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query narrows a SelectMany call.
type Query struct {
	Where   []Cond
	OrderBy []Order
	Limit   int
}

// Store implements the record-storage operations for one table.
type Store[T any] struct {
	db    database.Querier
	table Table[T]
}

func NewStore[T any](db database.Querier, table Table[T]) *Store[T] {
	return &Store[T]{db: db, table: table}
}

// WithTx returns a copy of the store bound to tx.
func (s *Store[T]) WithTx(tx database.Querier) *Store[T] {
	if tx == nil {
		return s
	}
	return &Store[T]{db: tx, table: s.table}
}

// Insert appends rec. A unique violation is reported as a conflict.
func (s *Store[T]) Insert(ctx context.Context, rec *T) error {
	columns, values := s.insertColumns(rec)
	query := database.InsertQuery(s.table.Name, columns)

	if s.table.AutoKey {
		id, err := s.db.ExecReturningID(ctx, query, values...)
		if err != nil {
			return s.classify(err, "insert")
		}
		s.table.SetKey(rec, id)
		return nil
	}

	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return s.classify(err, "insert")
	}
	return nil
}

// Upsert inserts rec, or, when conflictColumn already holds rec's value,
// overwrites only updateColumns. The stored row is read back into rec.
func (s *Store[T]) Upsert(ctx context.Context, rec *T, conflictColumn string, updateColumns ...string) error {
	if len(updateColumns) == 0 {
		return fmt.Errorf("%s: upsert needs at least one update column", s.table.Name)
	}
	if err := s.upsert(ctx, rec, conflictColumn, updateColumns); err != nil {
		return err
	}
	return s.reload(ctx, rec, conflictColumn)
}

// InsertIfAbsent writes rec unless a row with the same conflictColumn value
// exists, then reads the stored row back into rec. It never overwrites.
func (s *Store[T]) InsertIfAbsent(ctx context.Context, rec *T, conflictColumn string) error {
	if err := s.upsert(ctx, rec, conflictColumn, nil); err != nil {
		return err
	}
	return s.reload(ctx, rec, conflictColumn)
}

func (s *Store[T]) upsert(ctx context.Context, rec *T, conflictColumn string, updateColumns []string) error {
	columns, values := s.insertColumns(rec)
	query := s.db.GetDialect().UpsertQuery(s.table.Name, columns, conflictColumn, updateColumns)
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return s.classify(err, "upsert")
	}
	return nil
}

func (s *Store[T]) reload(ctx context.Context, rec *T, column string) error {
	idx := s.columnIndex(column)
	if idx < 0 {
		return fmt.Errorf("%s: unknown column %q", s.table.Name, column)
	}
	stored, err := s.SelectOne(ctx, Eq(column, s.table.Values(rec)[idx]))
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// SelectOne returns the first row matching where, or a not-found error.
func (s *Store[T]) SelectOne(ctx context.Context, where ...Cond) (*T, error) {
	clause, args := buildWhere(where)
	query := "SELECT " + strings.Join(s.table.Columns, ", ") + " FROM " + s.table.Name + clause + " LIMIT 1"

	var rec T
	if err := s.table.Scan(s.db.QueryRowContext(ctx, query, args...), &rec); err != nil {
		return nil, s.classify(err, "select")
	}
	return &rec, nil
}

// SelectMany returns every row matching q, in q's order.
func (s *Store[T]) SelectMany(ctx context.Context, q Query) ([]T, error) {
	clause, args := buildWhere(q.Where)
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.table.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(s.table.Name)
	b.WriteString(clause)
	if len(q.OrderBy) > 0 {
		parts := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			parts[i] = o.Column
			if o.Desc {
				parts[i] += " DESC"
			} else {
				parts[i] += " ASC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, s.classify(err, "select")
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var rec T
		if err := s.table.Scan(rows, &rec); err != nil {
			return nil, s.classify(err, "scan")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err, "select")
	}
	return out, nil
}

// Count returns the number of rows matching where.
func (s *Store[T]) Count(ctx context.Context, where ...Cond) (int64, error) {
	clause, args := buildWhere(where)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table.Name+clause, args...).Scan(&n); err != nil {
		return 0, s.classify(err, "count")
	}
	return n, nil
}

// Update sets the given columns on every row matching where and returns the
// number of rows changed.
func (s *Store[T]) Update(ctx context.Context, set []Cond, where ...Cond) (int64, error) {
	if len(set) == 0 {
		return 0, fmt.Errorf("%s: update needs at least one column", s.table.Name)
	}
	assignments := make([]string, len(set))
	args := make([]any, 0, len(set)+len(where))
	for i, c := range set {
		assignments[i] = c.Column + " = ?"
		args = append(args, c.Value)
	}
	clause, whereArgs := buildWhere(where)
	args = append(args, whereArgs...)

	res, err := s.db.ExecContext(ctx, "UPDATE "+s.table.Name+" SET "+strings.Join(assignments, ", ")+clause, args...)
	if err != nil {
		return 0, s.classify(err, "update")
	}
	return res.RowsAffected()
}

// Delete removes every row matching where and returns the count.
func (s *Store[T]) Delete(ctx context.Context, where ...Cond) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("%s: refusing unfiltered delete", s.table.Name)
	}
	clause, args := buildWhere(where)
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table.Name+clause, args...)
	if err != nil {
		return 0, s.classify(err, "delete")
	}
	return res.RowsAffected()
}

func (s *Store[T]) insertColumns(rec *T) ([]string, []any) {
	values := s.table.Values(rec)
	if !s.table.AutoKey {
		return s.table.Columns, values
	}
	columns := make([]string, 0, len(s.table.Columns)-1)
	filtered := make([]any, 0, len(values)-1)
	for i, col := range s.table.Columns {
		if col == s.table.Key {
			continue
		}
		columns = append(columns, col)
		filtered = append(filtered, values[i])
	}
	return columns, filtered
}

func (s *Store[T]) columnIndex(column string) int {
	for i, col := range s.table.Columns {
		if col == column {
			return i
		}
	}
	return -1
}

func (s *Store[T]) classify(err error, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("%s: no matching row", s.table.Name)
	case s.db.GetDialect().IsUniqueViolation(err):
		return apperr.Conflict(err, s.table.Name+": duplicate key")
	default:
		return apperr.Storage(err, fmt.Sprintf("%s: %s failed", s.table.Name, op))
	}
}

func buildWhere(where []Cond) (string, []any) {
	if len(where) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(where))
	args := make([]any, 0, len(where))
	for _, c := range where {
		switch c.Op {
		case "IN":
			items, _ := c.Value.([]any)
			if len(items) == 0 {
				parts = append(parts, "1 = 0")
				continue
			}
			parts = append(parts, c.Column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")+")")
			args = append(args, items...)
		case "IS NULL", "IS NOT NULL":
			parts = append(parts, c.Column+" "+c.Op)
		default:
			parts = append(parts, c.Column+" "+c.Op+" ?")
			args = append(args, c.Value)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}
