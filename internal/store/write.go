package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/querysql"
	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

// Record is a value the store can persist.
//
// Descriptor must be callable on the zero value: the store asks a zero T
// for its descriptor before any row exists. Values returns the record's
// fields keyed by column name; absent fields are written as NULL.
type Record interface {
	Descriptor() *schema.Descriptor
	Values() map[string]value.Native
}

// Put writes rec, replacing any row with the same primary key.
//
// For auto-increment descriptors a missing or Nil key is left to the
// backend. Otherwise the key must be present.
func (s *Store) Put(ctx context.Context, rec Record) error {
	d := rec.Descriptor()
	tbl, err := s.Create(ctx, d)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	vals := rec.Values()
	for _, name := range slices.Sorted(maps.Keys(vals)) {
		if _, ok := d.Field(name); !ok {
			return fmt.Errorf("put %s: %w: %s", tbl.Name, ErrUnknownField, name)
		}
	}

	if isNil(vals[d.PrimaryKey]) && !d.AutoIncrement {
		return fmt.Errorf("put %s: %w: %s", tbl.Name, ErrMissingKey, d.PrimaryKey)
	}

	cols := make([]string, 0, len(d.Fields))
	args := make([]value.Primitive, 0, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := vals[f.Name]
		if !ok {
			v = value.Nil{}
		}
		if f.Name == d.PrimaryKey && isNil(v) {
			continue
		}
		if !isNil(v) {
			if k, _ := tbl.Kind(f.Name); !k.Compatible(v.Kind()) {
				return fmt.Errorf("put %s: %w: %s is %s, got %s", tbl.Name, ErrKindMismatch, f.Name, k, v.Kind())
			}
		}
		cols = append(cols, f.Name)
		args = append(args, value.Encode(v))
	}

	text := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s);",
		tbl.Name, strings.Join(cols, ", "), placeholders(len(cols)))
	if len(cols) == 0 {
		text = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES;", tbl.Name)
	}
	if _, err := s.executor().Execute(ctx, text, args); err != nil {
		return fmt.Errorf("put %s: %w", tbl.Name, err)
	}
	return nil
}

// Delete removes the row with rec's primary key. Deleting a row that does
// not exist is not an error.
func (s *Store) Delete(ctx context.Context, rec Record) error {
	d := rec.Descriptor()
	key := rec.Values()[d.PrimaryKey]
	if isNil(key) {
		return fmt.Errorf("delete %s: %w: %s", d.Name, ErrMissingKey, d.PrimaryKey)
	}

	tbl, err := s.Create(ctx, d)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if _, err := s.DeleteRows(ctx, tbl.Name, query.New().Where(d.PrimaryKey, query.Equals, key)); err != nil {
		return err
	}
	return nil
}

// DeleteWhere removes every row of d's table matching q and returns the
// number removed. An empty q clears the table.
func (s *Store) DeleteWhere(ctx context.Context, d *schema.Descriptor, q query.Query) (int64, error) {
	tbl, err := s.Create(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	return s.DeleteRows(ctx, tbl.Name, q)
}

// DeleteRows is DeleteWhere by table name, for tables with no record type.
func (s *Store) DeleteRows(ctx context.Context, table string, q query.Query) (int64, error) {
	text, params, err := querysql.CompileDelete(table, q)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	s.logWarnings(table, q)

	res, err := s.executor().Execute(ctx, text, params)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return res.RowsAffected, nil
}

func isNil(v value.Native) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.Nil)
	return ok
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
