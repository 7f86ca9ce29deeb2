package query

import (
	"errors"
	"fmt"

	"github.com/roach88/switchblade/internal/value"
)

var (
	ErrDuplicateOrder = errors.New("query: order already set")
	ErrDuplicateLimit = errors.New("query: limit already set")
	ErrNegativeLimit  = errors.New("query: negative limit")
)

// Operator is a comparison in a where clause.
type Operator uint8

const (
	Equals Operator = iota + 1
	Greater
	Less
	IsNull
	IsNotNull
)

// Binary reports whether the operator takes a value.
func (op Operator) Binary() bool {
	return op == Equals || op == Greater || op == Less
}

func (op Operator) String() string {
	switch op {
	case Equals:
		return "="
	case Greater:
		return ">"
	case Less:
		return "<"
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Clause is a single where condition.
// Value is ignored for IsNull and IsNotNull.
type Clause struct {
	Column string
	Op     Operator
	Value  value.Native
}

// Query is a where/order/limit descriptor. The zero value selects
// everything. Build it with New; the builder methods return copies, so a
// base query can be shared.
type Query struct {
	where    []Clause
	order    string
	hasOrder bool
	limit    int
	hasLimit bool
	err      error
}

// New returns an empty query.
func New() Query {
	return Query{}
}

func (q Query) with(fn func(*Query)) Query {
	q.where = append([]Clause(nil), q.where...)
	fn(&q)
	return q
}

// Where adds a clause.
func (q Query) Where(column string, op Operator, v value.Native) Query {
	return q.with(func(q *Query) {
		q.where = append(q.where, Clause{Column: column, Op: op, Value: v})
	})
}

// IsNull adds a "column IS NULL" clause.
func (q Query) IsNull(column string) Query {
	return q.Where(column, IsNull, nil)
}

// IsNotNull adds a "column IS NOT NULL" clause.
func (q Query) IsNotNull(column string) Query {
	return q.Where(column, IsNotNull, nil)
}

// OrderBy sets the ORDER BY expression. It may be set once.
func (q Query) OrderBy(expr string) Query {
	return q.with(func(q *Query) {
		if q.hasOrder {
			q.setErr(ErrDuplicateOrder)
			return
		}
		q.order, q.hasOrder = expr, true
	})
}

// Limit caps the number of rows. It may be set once.
func (q Query) Limit(n int) Query {
	return q.with(func(q *Query) {
		if q.hasLimit {
			q.setErr(ErrDuplicateLimit)
			return
		}
		if n < 0 {
			q.setErr(fmt.Errorf("%w: %d", ErrNegativeLimit, n))
			return
		}
		q.limit, q.hasLimit = n, true
	})
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// Clauses returns the where clauses in caller order.
func (q Query) Clauses() []Clause {
	return append([]Clause(nil), q.where...)
}

// Order returns the order expression and whether one is set.
func (q Query) Order() (string, bool) {
	return q.order, q.hasOrder
}

// RowLimit returns the limit and whether one is set.
func (q Query) RowLimit() (int, bool) {
	return q.limit, q.hasLimit
}

// Err returns the first builder error, if any.
func (q Query) Err() error {
	return q.err
}

// Empty reports whether the query has no where clauses. Compiled, such a
// query applies to the whole table.
func (q Query) Empty() bool {
	return len(q.where) == 0
}
