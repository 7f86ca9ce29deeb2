// Package querysql compiles query descriptors to parameterized SQLite
// statements.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/switchblade/internal/ident"
	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/value"
)

const (
	verbSelect = "SELECT *"
	verbDelete = "DELETE"
)

// Compile converts a query into a SELECT over table.
// Returns (sql, params, error).
//
// Values are always bound as ? parameters, in clause order. The order
// expression is emitted verbatim. An empty query selects the whole table.
func Compile(table string, q query.Query) (string, []value.Primitive, error) {
	return compile(verbSelect, table, q)
}

// CompileDelete converts a query into a DELETE over table.
// An empty query deletes every row.
func CompileDelete(table string, q query.Query) (string, []value.Primitive, error) {
	return compile(verbDelete, table, q)
}

func compile(verb, table string, q query.Query) (string, []value.Primitive, error) {
	name, err := ident.Normalize(table)
	if err != nil {
		return "", nil, fmt.Errorf("compile: table: %w", err)
	}
	if res := query.Validate(q); !res.Valid() {
		return "", nil, fmt.Errorf("compile: %w", res.Err())
	}

	var parts []string
	var params []value.Primitive

	if clauses := q.Clauses(); len(clauses) > 0 {
		conds := make([]string, 0, len(clauses))
		for _, c := range clauses {
			cond, param, hasParam := compileClause(c)
			conds = append(conds, cond)
			if hasParam {
				params = append(params, param)
			}
		}
		parts = append(parts, "WHERE "+strings.Join(conds, " AND "))
	}

	if order, ok := q.Order(); ok {
		parts = append(parts, "ORDER BY "+order)
	}

	if limit, ok := q.RowLimit(); ok {
		parts = append(parts, "LIMIT "+strconv.Itoa(limit))
	}

	sql := fmt.Sprintf("%s FROM %s %s", verb, name, strings.Join(parts, " "))
	return sql, params, nil
}

// compileClause renders one clause. Column names were validated by
// query.Validate before this runs.
func compileClause(c query.Clause) (string, value.Primitive, bool) {
	col, _ := ident.Normalize(c.Column)
	switch c.Op {
	case query.IsNull, query.IsNotNull:
		return fmt.Sprintf("%s %s", col, c.Op), nil, false
	default:
		return fmt.Sprintf("%s %s ?", col, c.Op), value.Encode(c.Value), true
	}
}
