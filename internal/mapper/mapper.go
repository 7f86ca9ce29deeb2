// Package mapper turns backend rows into typed records.
//
// Each row is decoded column by column with the kinds recorded in the
// schema registry, rendered as a JSON object, and unmarshalled into the
// record type. Record types therefore carry json tags that match their
// column names. Rows that cannot be rendered or unmarshalled are logged and
// skipped, never returned as errors.
package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/switchblade/internal/bridge"
	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

// Render builds the JSON object for one row. Columns unknown to tbl (or all
// columns when tbl is nil) decode by their storage class, as do inferred
// columns whose stored value does not fit the inferred kind.
//
// Interpreted text is rendered as a JSON string unless it is a JSON object
// or array, which is embedded as is.
func Render(tbl *schema.Table, row bridge.Row) ([]byte, error) {
	return render(tbl, row, nil)
}

// render is Render with a set of interpreted columns whose JSON scalar text
// is embedded raw instead of quoted.
func render(tbl *schema.Table, row bridge.Row, raw map[string]bool) ([]byte, error) {
	obj := make(map[string]any, len(row))
	for col, p := range row {
		n, err := decodeColumn(tbl, col, p)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		obj[col] = jsonValue(n, raw[col])
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("render row: %w", err)
	}
	return data, nil
}

func decodeColumn(tbl *schema.Table, col string, p value.Primitive) (value.Native, error) {
	kind, ok := tbl.Kind(col)
	if !ok {
		return value.Natural(p), nil
	}
	n, err := value.Decode(p, kind)
	if err != nil && tbl.Inferred(col) {
		return value.Natural(p), nil
	}
	return n, err
}

func jsonValue(n value.Native, raw bool) any {
	switch v := n.(type) {
	case value.Nil:
		return nil
	case value.String:
		return string(v)
	case value.Int:
		return int64(v)
	case value.Uint:
		return uint64(v)
	case value.Float:
		return float64(v)
	case value.Bytes:
		// encoding/json writes []byte as base64
		return []byte(v)
	case value.Identifier:
		return v.String()
	case value.Interpreted:
		if (raw || composite(v.Text)) && json.Valid([]byte(v.Text)) {
			return json.RawMessage(v.Text)
		}
		return v.Text
	default:
		panic(fmt.Sprintf("mapper: unhandled native %T", n))
	}
}

func composite(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")
}

// Materialize converts rows into records of type T, in row order. A row
// that fails is logged at Warn with its rendering and dropped, so the
// result may be shorter than rows.
func Materialize[T any](tbl *schema.Table, rows []bridge.Row, logger *slog.Logger) []T {
	if logger == nil {
		logger = slog.Default()
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, data, err := decode[T](tbl, row)
		if err != nil {
			if data == nil {
				logger.Warn("skipping row", "index", i, "error", err)
			} else {
				logger.Warn("skipping row", "index", i, "json", string(data), "error", err)
			}
			continue
		}
		out = append(out, rec)
	}
	return out
}

// decode renders row and unmarshals it into T. Interpreted scalars start out
// quoted; when T rejects one as a string (a bool or number field), that
// column is rendered raw and the row is decoded again.
func decode[T any](tbl *schema.Table, row bridge.Row) (T, []byte, error) {
	var raw map[string]bool
	for {
		var rec T
		data, err := render(tbl, row, raw)
		if err != nil {
			return rec, nil, err
		}
		err = json.Unmarshal(data, &rec)
		if err == nil {
			return rec, data, nil
		}

		col, ok := rawCandidate(tbl, row, err)
		if !ok || raw[col] {
			return rec, data, err
		}
		if raw == nil {
			raw = make(map[string]bool)
		}
		raw[col] = true
	}
}

// rawCandidate names the interpreted column behind a type error, if its
// text is a JSON scalar that could be embedded raw.
func rawCandidate(tbl *schema.Table, row bridge.Row, err error) (string, bool) {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Value != "string" {
		return "", false
	}
	col := typeErr.Field
	if kind, ok := tbl.Kind(col); !ok || kind != value.KindInterpreted {
		return "", false
	}
	text, ok := row[col].(value.Text)
	if !ok || !json.Valid([]byte(text)) {
		return "", false
	}
	return col, true
}
