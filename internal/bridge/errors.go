package bridge

import (
	"errors"
	"fmt"
)

// DatabaseError reports a failed interaction with the backend.
//
// Codes:
//   - INIT: the backend could not be opened or created
//   - EXECUTE: a DDL/DML statement was rejected
//   - QUERY: a read statement was rejected
//   - UNKNOWN: a call failed before producing a result (scan, column read)
type DatabaseError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is the backend's diagnostic text.
	Message string

	// Statement is the SQL text involved, if any.
	Statement string

	// Err is the underlying driver error.
	Err error
}

// ErrorCode categorizes database errors.
type ErrorCode string

const (
	ErrCodeInit    ErrorCode = "INIT"
	ErrCodeExecute ErrorCode = "EXECUTE"
	ErrCodeQuery   ErrorCode = "QUERY"
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("%s: %s (sql=%s)", e.Code, e.Message, e.Statement)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, stmt string, err error) *DatabaseError {
	return &DatabaseError{
		Code:      code,
		Message:   err.Error(),
		Statement: stmt,
		Err:       err,
	}
}

// NewInitError creates a DatabaseError for a backend that failed to open.
func NewInitError(err error) *DatabaseError {
	return newError(ErrCodeInit, "", err)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DatabaseError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsInitError returns true if err is an INIT database error.
func IsInitError(err error) bool { return hasCode(err, ErrCodeInit) }

// IsExecuteError returns true if err is an EXECUTE database error.
func IsExecuteError(err error) bool { return hasCode(err, ErrCodeExecute) }

// IsQueryError returns true if err is a QUERY database error.
func IsQueryError(err error) bool { return hasCode(err, ErrCodeQuery) }

// IsUnknownError returns true if err is an UNKNOWN database error.
func IsUnknownError(err error) bool { return hasCode(err, ErrCodeUnknown) }
