package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

func compileRecord(t *testing.T, src, path string) (*schema.Descriptor, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileRecord(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileRecordBasic(t *testing.T) {
	desc, err := compileRecord(t, `
		records: Person: {
			primary_key: "id"
			fields: {
				id:     "identifier"
				name:   "string"
				age:    "int"
				karma:  "uint64"
				score:  "float32"
				avatar: "bytes"
				born:   "time.Time"
			}
			indexes: ["name", "name, age"]
		}
	`, "records.Person")
	require.NoError(t, err)

	assert.Equal(t, "Person", desc.Name)
	assert.Equal(t, "id", desc.PrimaryKey)
	assert.False(t, desc.AutoIncrement)
	assert.Equal(t, []schema.Field{
		{Name: "id", Kind: value.KindIdentifier},
		{Name: "name", Kind: value.KindString},
		{Name: "age", Kind: value.KindInt},
		{Name: "karma", Kind: value.KindUint},
		{Name: "score", Kind: value.KindFloat},
		{Name: "avatar", Kind: value.KindBlob},
		{Name: "born", Kind: value.KindInterpreted},
	}, desc.Fields)
	assert.Equal(t, []string{"name", "name, age"}, desc.Indexes)
}

func TestCompileRecordCUETypes(t *testing.T) {
	desc, err := compileRecord(t, `
		records: Event: {
			primary_key: "seq"
			auto_increment: true
			fields: {
				seq:     int
				label:   string
				weight:  float
				payload: bytes
				flags:   [...string]
				extra:   {...}
				ok:      bool
			}
		}
	`, "records.Event")
	require.NoError(t, err)

	assert.True(t, desc.AutoIncrement)
	kinds := map[string]value.Kind{}
	for _, f := range desc.Fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]value.Kind{
		"seq":     value.KindInt,
		"label":   value.KindString,
		"weight":  value.KindFloat,
		"payload": value.KindBlob,
		"flags":   value.KindInterpreted,
		"extra":   value.KindInterpreted,
		"ok":      value.KindInterpreted,
	}, kinds)
}

func TestCompileRecordKeyNotFirst(t *testing.T) {
	desc, err := compileRecord(t, `
		records: Note: {
			primary_key: "slug"
			fields: { body: "string", slug: "string" }
		}
	`, "records.Note")
	require.NoError(t, err)

	assert.Equal(t, "slug", desc.Fields[0].Name, "the key is declared first")
	assert.Equal(t, "body", desc.Fields[1].Name)
}

func TestCompileRecordErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
		msg   string
	}{
		{
			name:  "missing primary key",
			src:   `records: R: { fields: { a: "string" } }`,
			field: "primary_key",
			msg:   "required",
		},
		{
			name:  "no fields",
			src:   `records: R: { primary_key: "a" }`,
			field: "fields",
			msg:   "at least one field",
		},
		{
			name:  "undeclared key",
			src:   `records: R: { primary_key: "zz", fields: { a: "string" } }`,
			field: "primary_key",
			msg:   "not a declared field",
		},
		{
			name:  "float key",
			src:   `records: R: { primary_key: "a", fields: { a: "float" } }`,
			field: "record",
			msg:   "unsupported primary key kind",
		},
		{
			name:  "index on unknown column",
			src:   `records: R: { primary_key: "a", fields: { a: "string" }, indexes: ["b"] }`,
			field: "record",
			msg:   "unknown field",
		},
		{
			name:  "non-string index",
			src:   `records: R: { primary_key: "a", fields: { a: "string" }, indexes: [1] }`,
			field: "indexes",
			msg:   "comma-separated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileRecord(t, tt.src, "records.R")
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.msg)
		})
	}
}

func TestCompileRecordInvalidValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`records: R: { primary_key: 1 & 2 }`)
	_, err := CompileRecord(v.LookupPath(cue.ParsePath("records.R")))
	require.Error(t, err)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "fields", Message: "at least one field is required"}
	assert.Equal(t, "fields: at least one field is required", err.Error())
}
