package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// unit is one Perform in flight.
type unit struct {
	tx     *sql.Tx
	failed bool
}

// Perform runs work inside a single transaction and reports how it ended.
//
// Every store operation made while work runs goes through the transaction.
// The transaction rolls back if work returns an error, calls
// FailTransaction, or panics (the panic is re-raised after rollback).
// Otherwise it commits. Perform does not nest: a call while another unit is
// active fails with ErrNestedTransaction and work never runs.
func (s *Store) Perform(ctx context.Context, work func(ctx context.Context) error) *Outcome {
	if s.unit != nil {
		return &Outcome{err: ErrNestedTransaction}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Outcome{err: fmt.Errorf("perform: begin tx: %w", err)}
	}

	u := &unit{tx: tx}
	s.unit = u
	finished := false
	defer func() {
		s.unit = nil
		if !finished {
			s.rollback(tx)
		}
	}()

	werr := work(ctx)

	switch {
	case werr != nil:
		s.rollback(tx)
		finished = true
		return &Outcome{err: fmt.Errorf("%w: %w", ErrTransactionFailed, werr)}
	case u.failed:
		s.rollback(tx)
		finished = true
		return &Outcome{err: ErrTransactionFailed}
	}

	finished = true
	if err := tx.Commit(); err != nil {
		s.registry.Reset()
		return &Outcome{err: fmt.Errorf("perform: commit: %w", err)}
	}
	return &Outcome{}
}

// rollback undoes the transaction. DDL rolls back with it, so the registry
// is reset and tables are re-derived on next use.
func (s *Store) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Warn("rollback failed", "error", err)
	}
	s.registry.Reset()
}

// FailTransaction marks the active unit of work so that Perform rolls it
// back instead of committing. Outside Perform it only logs.
func (s *Store) FailTransaction() {
	if s.unit == nil {
		s.logger.Warn("FailTransaction called with no active transaction")
		return
	}
	s.unit.failed = true
}

// Outcome is the result of Perform. Continuations run synchronously, once,
// as they are registered, and can be chained in any order.
type Outcome struct {
	err error
}

// OnSuccess runs fn if the unit committed.
func (o *Outcome) OnSuccess(fn func()) *Outcome {
	if o.err == nil {
		fn()
	}
	return o
}

// OnFailure runs fn with the error if the unit did not commit.
func (o *Outcome) OnFailure(fn func(error)) *Outcome {
	if o.err != nil {
		fn(o.err)
	}
	return o
}

// OnFinally always runs fn.
func (o *Outcome) OnFinally(fn func()) *Outcome {
	fn()
	return o
}

// Err returns why the unit failed, or nil.
func (o *Outcome) Err() error {
	return o.err
}

// Succeeded reports whether the unit committed.
func (o *Outcome) Succeeded() bool {
	return o.err == nil
}
