package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

// CompileRecord parses a CUE value into a record Descriptor.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the record struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`records: Person: { ... }`)
//	desc, err := CompileRecord(v.LookupPath(cue.ParsePath("records.Person")))
//
// A record looks like:
//
//	records: Person: {
//		primary_key: "id"
//		auto_increment: false // optional
//		fields: {
//			id:   "identifier"
//			name: string
//			age:  "int"
//		}
//		indexes: ["name", "name, age"] // optional
//	}
//
// Field kinds are either kind names ("uuid", "uint64", "blob", ...) or CUE
// types. Fields keep their declaration order.
func CompileRecord(v cue.Value) (*schema.Descriptor, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Record name from struct label (the path selector)
	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	keyVal := v.LookupPath(cue.ParsePath("primary_key"))
	if !keyVal.Exists() {
		return nil, &CompileError{
			Field:   "primary_key",
			Message: "primary_key is required",
			Pos:     v.Pos(),
		}
	}
	key, err := keyVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	auto := false
	if autoVal := v.LookupPath(cue.ParsePath("auto_increment")); autoVal.Exists() {
		if auto, err = autoVal.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	fields, err := parseFields(v)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}

	keyField, ok := findField(fields, key)
	if !ok {
		return nil, &CompileError{
			Field:   "primary_key",
			Message: fmt.Sprintf("primary key %q is not a declared field", key),
			Pos:     keyVal.Pos(),
		}
	}

	b := schema.Describe(name).Key(keyField.Name, keyField.Kind)
	if auto {
		b.AutoIncrement()
	}
	for _, f := range fields {
		if f.Name != keyField.Name {
			b.Field(f.Name, f.Kind)
		}
	}

	indexes, err := parseIndexes(v)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		b.Index(idx)
	}

	desc, err := b.Build()
	if err != nil {
		return nil, &CompileError{
			Field:   "record",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return desc, nil
}

// parseFields extracts fields in declaration order.
func parseFields(v cue.Value) ([]schema.Field, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []schema.Field
	for iter.Next() {
		kind, err := extractKind(iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field{Name: iter.Label(), Kind: kind})
	}
	return fields, nil
}

// parseIndexes extracts the optional index list.
func parseIndexes(v cue.Value) ([]string, error) {
	idxVal := v.LookupPath(cue.ParsePath("indexes"))
	if !idxVal.Exists() {
		return nil, nil
	}

	iter, err := idxVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var indexes []string
	for iter.Next() {
		cols, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "indexes",
				Message: "index must be a comma-separated column string",
				Pos:     iter.Value().Pos(),
			}
		}
		indexes = append(indexes, cols)
	}
	return indexes, nil
}

// extractKind converts a field's CUE value to a value kind. Concrete
// strings are kind names; anything else is judged by its CUE type.
func extractKind(v cue.Value) (value.Kind, error) {
	if v.IsConcrete() {
		if s, err := v.String(); err == nil {
			return value.ParseKind(s), nil
		}
	}

	switch v.IncompleteKind() {
	case cue.StringKind:
		return value.KindString, nil
	case cue.IntKind:
		return value.KindInt, nil
	case cue.FloatKind, cue.NumberKind:
		return value.KindFloat, nil
	case cue.BytesKind:
		return value.KindBlob, nil
	case cue.BoolKind, cue.ListKind, cue.StructKind:
		return value.KindInterpreted, nil
	default:
		return 0, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func findField(fields []schema.Field, name string) (schema.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
