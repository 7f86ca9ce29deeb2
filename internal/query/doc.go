// Package query provides the structured query descriptor that switchblade
// compiles into SQL.
//
// A Query is three explicit parts:
//   - Where: zero or more clauses, combined with AND in caller order
//   - Order: at most one ORDER BY expression, emitted verbatim
//   - Limit: at most one row limit
//
// Queries are built with a builder:
//
//	q := query.New().
//	    Where("age", query.Greater, value.Int(18)).
//	    Where("name", query.Equals, value.String("Sam")).
//	    OrderBy("age DESC").
//	    Limit(10)
//
// A second OrderBy or Limit does not replace the first. It records
// ErrDuplicateOrder or ErrDuplicateLimit, which Err and every compiler
// report.
//
// The order expression is trusted caller input. Column names in clauses
// are validated as identifiers; values are always bound as parameters.
package query
