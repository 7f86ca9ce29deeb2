// Package ident normalizes and validates SQL identifiers (table and column
// names). Identifiers are interpolated into statements, so anything outside
// letters, digits and underscore is rejected.
package ident

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidIdentifier is returned for names that cannot be used as a table
// or column name.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Normalize returns the NFC form of name after checking that it is a plain
// identifier: a letter or underscore followed by letters, digits or
// underscores.
func Normalize(name string) (string, error) {
	n := norm.NFC.String(name)
	if n == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	for i, r := range n {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return n, nil
}

// Must is Normalize for names known at compile time.
func Must(name string) string {
	n, err := Normalize(name)
	if err != nil {
		panic(err)
	}
	return n
}
