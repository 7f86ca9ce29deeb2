// Package bridge is the thin seam between switchblade and the SQL backend.
//
// Every call prepares a statement, binds positional parameters, steps it to
// completion and closes the handle before returning. Handles are never kept
// across calls. Rows come back as column name → value.Primitive maps.
package bridge

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/roach88/switchblade/internal/value"
)

// Conn is the part of database/sql the bridge needs. *sql.DB, *sql.Tx and
// *sql.Conn all satisfy it.
type Conn interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Row maps column names to stored primitives.
type Row map[string]value.Primitive

// Result describes the effect of a mutating statement.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Executor runs statements against a Conn.
type Executor struct {
	conn   Conn
	logger *slog.Logger
}

// New creates an Executor. A nil logger uses slog.Default().
func New(conn Conn, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{conn: conn, logger: logger}
}

type execOptions struct {
	silent bool
}

// Option configures a single Execute call.
type Option func(*execOptions)

// Silent drops backend errors for this call and turns it into a no-op.
// Schema migration uses it for best-effort DDL.
func Silent() Option {
	return func(o *execOptions) {
		o.silent = true
	}
}

// Execute runs a mutating statement.
// Parameter count mismatches fail inside database/sql before anything runs.
func (e *Executor) Execute(ctx context.Context, text string, args []value.Primitive, opts ...Option) (Result, error) {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	res, err := e.execute(ctx, text, args)
	if err != nil {
		if o.silent {
			e.logger.Debug("suppressed statement error", "sql", text, "error", err)
			return Result{}, nil
		}
		return Result{}, err
	}
	return res, nil
}

func (e *Executor) execute(ctx context.Context, text string, args []value.Primitive) (Result, error) {
	stmt, err := e.conn.PrepareContext(ctx, text)
	if err != nil {
		return Result{}, newError(ErrCodeExecute, text, err)
	}
	defer stmt.Close()

	r, err := stmt.ExecContext(ctx, value.Args(args)...)
	if err != nil {
		return Result{}, newError(ErrCodeExecute, text, err)
	}

	var res Result
	if res.RowsAffected, err = r.RowsAffected(); err != nil {
		return Result{}, newError(ErrCodeUnknown, text, err)
	}
	if res.LastInsertID, err = r.LastInsertId(); err != nil {
		return Result{}, newError(ErrCodeUnknown, text, err)
	}
	return res, nil
}

// Query runs a read statement and collects every row.
// Returns an empty slice (not nil) when nothing matches.
func (e *Executor) Query(ctx context.Context, text string, args []value.Primitive) ([]Row, error) {
	stmt, err := e.conn.PrepareContext(ctx, text)
	if err != nil {
		return nil, newError(ErrCodeQuery, text, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, value.Args(args)...)
	if err != nil {
		return nil, newError(ErrCodeQuery, text, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, newError(ErrCodeUnknown, text, err)
	}

	out := []Row{}
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, newError(ErrCodeUnknown, text, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			p, err := value.FromDriver(raw[i])
			if err != nil {
				return nil, newError(ErrCodeUnknown, text, err)
			}
			row[col] = p
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, newError(ErrCodeQuery, text, err)
	}
	return out, nil
}
