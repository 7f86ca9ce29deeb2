package cli

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

// whereExpr matches "col op literal", "col is null" and "col is not null".
var whereExpr = regexp.MustCompile(`(?i)^\s*([^\s=<>]+)\s*(?:(=|>|<)\s*(.*?)|(is\s+not\s+null|is\s+null))\s*$`)

// buildQuery turns command-line predicates into a query. Literals are typed
// by the column kinds in tbl.
func buildQuery(tbl *schema.Table, where []string, order string, limit int) (query.Query, error) {
	q := query.New()
	for _, expr := range where {
		var err error
		if q, err = addPredicate(q, tbl, expr); err != nil {
			return q, err
		}
	}
	if order != "" {
		q = q.OrderBy(order)
	}
	if limit >= 0 {
		q = q.Limit(limit)
	}
	return q, q.Err()
}

func addPredicate(q query.Query, tbl *schema.Table, expr string) (query.Query, error) {
	m := whereExpr.FindStringSubmatch(expr)
	if m == nil {
		return q, fmt.Errorf("cannot parse predicate %q: want \"col = v\", \"col > v\", \"col < v\", \"col is null\" or \"col is not null\"", expr)
	}
	col := m[1]

	if m[4] != "" {
		if strings.Contains(strings.ToLower(m[4]), "not") {
			return q.IsNotNull(col), nil
		}
		return q.IsNull(col), nil
	}

	kind, known := tbl.Kind(col)
	if !known {
		return q, fmt.Errorf("unknown column %q", col)
	}

	v, err := parseLiteral(m[3], kind)
	if err != nil {
		return q, fmt.Errorf("predicate %q: %w", expr, err)
	}

	op := map[string]query.Operator{"=": query.Equals, ">": query.Greater, "<": query.Less}[m[2]]
	if _, isNil := v.(value.Nil); isNil {
		if op != query.Equals {
			return q, fmt.Errorf("predicate %q: null only compares with =", expr)
		}
		return q.IsNull(col), nil
	}
	return q.Where(col, op, v), nil
}

// parseLiteral types a command-line literal for a column of the given kind.
// The prefixes "uuid:" and "blob:" (base64) override the column kind, and
// the bare word null is Nil.
func parseLiteral(raw string, kind value.Kind) (value.Native, error) {
	switch {
	case strings.EqualFold(raw, "null"):
		return value.Nil{}, nil
	case strings.HasPrefix(raw, "uuid:"):
		u, err := uuid.Parse(strings.TrimPrefix(raw, "uuid:"))
		if err != nil {
			return nil, err
		}
		return value.UUID(u), nil
	case strings.HasPrefix(raw, "blob:"):
		b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, "blob:"))
		if err != nil {
			return nil, err
		}
		return value.Bytes(b), nil
	}

	raw = unquote(raw)

	switch kind {
	case value.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("want an integer: %w", err)
		}
		return value.Int(n), nil
	case value.KindUint:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("want an unsigned integer: %w", err)
		}
		return value.Uint(n), nil
	case value.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("want a number: %w", err)
		}
		return value.Float(f), nil
	case value.KindBlob:
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("want base64: %w", err)
		}
		return value.Bytes(b), nil
	case value.KindIdentifier:
		u, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return value.UUID(u), nil
	case value.KindInterpreted:
		return value.Interpreted{Text: raw}, nil
	default:
		return value.String(raw), nil
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
