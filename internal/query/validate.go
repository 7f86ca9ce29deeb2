package query

import (
	"errors"
	"fmt"

	"github.com/roach88/switchblade/internal/ident"
	"github.com/roach88/switchblade/internal/value"
)

// ValidationResult contains the outcome of checking a query.
type ValidationResult struct {
	// Errors make the query uncompilable.
	Errors []error

	// Warnings flag legal but risky queries, such as a query with no
	// predicates, which matches the whole table.
	Warnings []string
}

// Valid reports whether the query can be compiled.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all validation errors, or returns nil.
func (r ValidationResult) Err() error {
	return errors.Join(r.Errors...)
}

// Validate checks a query before compilation. It is a pure function.
func Validate(q Query) ValidationResult {
	var res ValidationResult

	if q.err != nil {
		res.Errors = append(res.Errors, q.err)
	}

	for i, c := range q.where {
		if _, err := ident.Normalize(c.Column); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("clause %d: %w", i, err))
		}
		switch {
		case c.Op.Binary():
			if c.Value == nil {
				res.Errors = append(res.Errors, fmt.Errorf("clause %d: %s %s needs a value", i, c.Column, c.Op))
			} else if _, isNil := c.Value.(value.Nil); isNil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("clause %d: %s %s NULL never matches; use IsNull", i, c.Column, c.Op))
			}
		case c.Op == IsNull || c.Op == IsNotNull:
		default:
			res.Errors = append(res.Errors, fmt.Errorf("clause %d: unknown operator %s", i, c.Op))
		}
	}

	if q.Empty() {
		res.Warnings = append(res.Warnings, "no predicates: statement applies to the whole table")
	}

	return res
}
