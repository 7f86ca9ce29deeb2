package store

import (
	"errors"

	"github.com/roach88/switchblade/internal/schema"
)

var (
	// ErrNestedTransaction is returned by Perform while another unit is active.
	ErrNestedTransaction = errors.New("store: transaction already in progress")

	// ErrTransactionFailed marks a unit of work that rolled back.
	ErrTransactionFailed = errors.New("store: transaction failed")

	// ErrUnknownField is returned by Put for values with no descriptor field.
	ErrUnknownField = errors.New("store: unknown field")

	ErrKindMismatch = schema.ErrKindMismatch
	ErrMissingKey   = schema.ErrMissingKey
)
