package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/switchblade/internal/ident"
	"github.com/roach88/switchblade/internal/value"
)

var (
	ErrMissingKey      = errors.New("schema: primary key not declared")
	ErrDuplicateField  = errors.New("schema: duplicate field")
	ErrInvalidKind     = errors.New("schema: invalid kind")
	ErrUnsupportedKey  = errors.New("schema: unsupported primary key kind")
	ErrUnknownIndexCol = errors.New("schema: index references unknown field")
)

// Field is one column of a record type.
type Field struct {
	Name string
	Kind value.Kind
}

// Descriptor is the static field-kind table of a record type. Build one per
// type with Describe and keep it in a package-level variable.
type Descriptor struct {
	Name          string
	PrimaryKey    string
	AutoIncrement bool
	Fields        []Field
	Indexes       []string
}

// Field returns the named field.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Builder accumulates a Descriptor.
type Builder struct {
	d    Descriptor
	errs []error
}

// Describe starts a descriptor for the record type with the given name.
// The name becomes the table name unless an alias is registered.
func Describe(name string) *Builder {
	b := &Builder{}
	n, err := ident.Normalize(name)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("record name: %w", err))
	}
	b.d.Name = n
	return b
}

// Key declares the primary key field. It is also added as a field.
func (b *Builder) Key(name string, kind value.Kind) *Builder {
	if b.d.PrimaryKey != "" {
		b.errs = append(b.errs, fmt.Errorf("%w: %s already the key", ErrDuplicateField, b.d.PrimaryKey))
		return b
	}
	if !keyKind(kind) {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrUnsupportedKey, kind))
	}
	before := len(b.d.Fields)
	b.Field(name, kind)
	if len(b.d.Fields) > before {
		b.d.PrimaryKey = b.d.Fields[before].Name
	}
	return b
}

// Field declares a column in declaration order.
func (b *Builder) Field(name string, kind value.Kind) *Builder {
	n, err := ident.Normalize(name)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("field: %w", err))
		return b
	}
	if !kind.Valid() {
		b.errs = append(b.errs, fmt.Errorf("%w: field %s has %s", ErrInvalidKind, n, kind))
		return b
	}
	if _, dup := b.d.Field(n); dup {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrDuplicateField, n))
		return b
	}
	b.d.Fields = append(b.d.Fields, Field{Name: n, Kind: kind})
	return b
}

// AutoIncrement lets the backend assign integer keys.
func (b *Builder) AutoIncrement() *Builder {
	b.d.AutoIncrement = true
	return b
}

// Index requests an index over a comma-separated column list.
func (b *Builder) Index(columns string) *Builder {
	b.d.Indexes = append(b.d.Indexes, columns)
	return b
}

// Build validates and returns the descriptor.
func (b *Builder) Build() (*Descriptor, error) {
	errs := append([]error(nil), b.errs...)
	if b.d.PrimaryKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingKey, b.d.Name))
	}
	for _, idx := range b.d.Indexes {
		for _, col := range SplitColumns(idx) {
			if _, ok := b.d.Field(col); !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownIndexCol, col))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("describe %s: %w", b.d.Name, err)
	}

	d := b.d
	d.Fields = append([]Field(nil), b.d.Fields...)
	d.Indexes = append([]string(nil), b.d.Indexes...)
	return &d, nil
}

// MustBuild is Build for package-level descriptors.
func (b *Builder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// SplitColumns normalizes a comma-separated column list: spaces are
// stripped and empty entries dropped.
func SplitColumns(list string) []string {
	var cols []string
	for _, c := range strings.Split(list, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if n, err := ident.Normalize(c); err == nil {
			c = n
		}
		cols = append(cols, c)
	}
	return cols
}

func keyKind(k value.Kind) bool {
	switch k {
	case value.KindString, value.KindIdentifier, value.KindInt, value.KindUint:
		return true
	default:
		return false
	}
}
