package store

import (
	"context"
	"fmt"

	"github.com/roach88/switchblade/internal/bridge"
	"github.com/roach88/switchblade/internal/mapper"
	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/querysql"
	"github.com/roach88/switchblade/internal/value"
)

// Query returns the records of type T matching q, in the order the backend
// yields them (q's order expression, if any).
//
// Rows that cannot be decoded into T are logged and skipped. Returns an
// empty slice (not nil) when nothing matches.
func Query[T Record](ctx context.Context, s *Store, q query.Query) ([]T, error) {
	var zero T
	d := zero.Descriptor()

	tbl, err := s.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	rows, err := s.Rows(ctx, tbl.Name, q)
	if err != nil {
		return nil, err
	}
	return mapper.Materialize[T](tbl, rows, s.logger), nil
}

// Get returns the record of type T whose primary key equals key.
func Get[T Record](ctx context.Context, s *Store, key value.Native) (T, bool, error) {
	var zero T
	d := zero.Descriptor()

	found, err := Query[T](ctx, s, query.New().Where(d.PrimaryKey, query.Equals, key).Limit(1))
	if err != nil || len(found) == 0 {
		return zero, false, err
	}
	return found[0], true, nil
}

// Rows runs q against table and returns the raw rows, for tables with no
// record type.
func (s *Store) Rows(ctx context.Context, table string, q query.Query) ([]bridge.Row, error) {
	text, params, err := querysql.Compile(table, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	rows, err := s.executor().Query(ctx, text, params)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}
