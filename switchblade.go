// Package switchblade stores structured records in SQLite without a
// hand-written schema.
//
// A record type implements Record: it returns a Descriptor built once with
// Describe, and its current field values. Tables and columns are derived
// from descriptors on first use and only ever grow.
//
//	st, err := switchblade.Open("app.db")
//	...
//	err = st.Put(ctx, person)
//	adults, err := switchblade.Select[Person](ctx, st,
//		switchblade.NewQuery().Where("age", switchblade.Greater, switchblade.Int(17)))
package switchblade

import (
	"context"

	"github.com/roach88/switchblade/internal/bridge"
	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/store"
	"github.com/roach88/switchblade/internal/value"
)

type (
	Store      = store.Store
	Option     = store.Option
	Record     = store.Record
	Outcome    = store.Outcome
	Descriptor = schema.Descriptor
	Table      = schema.Table
	Query      = query.Query
	Operator   = query.Operator
	Kind       = value.Kind
	Native     = value.Native
	Row        = bridge.Row
)

// Database errors. Every backend failure is a *DatabaseError; classify it
// with the Is* helpers or errors.As.
type (
	DatabaseError = bridge.DatabaseError
	ErrorCode     = bridge.ErrorCode
)

const (
	ErrCodeInit    = bridge.ErrCodeInit
	ErrCodeExecute = bridge.ErrCodeExecute
	ErrCodeQuery   = bridge.ErrCodeQuery
	ErrCodeUnknown = bridge.ErrCodeUnknown
)

var (
	IsInitError    = bridge.IsInitError
	IsExecuteError = bridge.IsExecuteError
	IsQueryError   = bridge.IsQueryError
	IsUnknownError = bridge.IsUnknownError
)

// Value constructors.
type (
	String      = value.String
	Int         = value.Int
	Uint        = value.Uint
	Float       = value.Float
	Bytes       = value.Bytes
	Identifier  = value.Identifier
	Interpreted = value.Interpreted
	Nil         = value.Nil
)

const (
	KindString      = value.KindString
	KindInt         = value.KindInt
	KindUint        = value.KindUint
	KindFloat       = value.KindFloat
	KindBlob        = value.KindBlob
	KindIdentifier  = value.KindIdentifier
	KindInterpreted = value.KindInterpreted

	Equals    = query.Equals
	Greater   = query.Greater
	Less      = query.Less
	IsNull    = query.IsNull
	IsNotNull = query.IsNotNull
)

var (
	ErrNestedTransaction = store.ErrNestedTransaction
	ErrTransactionFailed = store.ErrTransactionFailed
	ErrUnknownField      = store.ErrUnknownField
	ErrKindMismatch      = store.ErrKindMismatch
	ErrMissingKey        = store.ErrMissingKey
)

var (
	WithLogger  = store.WithLogger
	WithAliases = store.WithAliases
	Describe    = schema.Describe
	NewQuery    = query.New
	UUID        = value.UUID
	Interpret   = value.Interpret
)

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	return store.Open(path, opts...)
}

// Select runs q against T's table and returns the matching records.
func Select[T Record](ctx context.Context, s *Store, q Query) ([]T, error) {
	return store.Query[T](ctx, s, q)
}

// Get looks a record up by primary key.
func Get[T Record](ctx context.Context, s *Store, key Native) (T, bool, error) {
	return store.Get[T](ctx, s, key)
}
