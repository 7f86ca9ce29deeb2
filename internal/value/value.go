package value

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StorageClass names a backend primitive.
type StorageClass uint8

const (
	ClassNull StorageClass = iota
	ClassText
	ClassInteger
	ClassReal
	ClassBlob
)

func (c StorageClass) String() string {
	switch c {
	case ClassText:
		return "TEXT"
	case ClassInteger:
		return "INTEGER"
	case ClassReal:
		return "REAL"
	case ClassBlob:
		return "BLOB"
	default:
		return "NULL"
	}
}

// Primitive is a sealed interface over the backend's value vocabulary.
// Only Null, Text, Integer, Real, and Blob implement it.
type Primitive interface {
	Class() StorageClass
	primitive()
}

// Null is the absent value.
type Null struct{}

func (Null) primitive()          {}
func (Null) Class() StorageClass { return ClassNull }

// Text is a UTF-8 string.
type Text string

func (Text) primitive()          {}
func (Text) Class() StorageClass { return ClassText }

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) primitive()          {}
func (Integer) Class() StorageClass { return ClassInteger }

// Real is a 64-bit float.
type Real float64

func (Real) primitive()          {}
func (Real) Class() StorageClass { return ClassReal }

// Blob is a raw byte sequence.
type Blob []byte

func (Blob) primitive()          {}
func (Blob) Class() StorageClass { return ClassBlob }

// Native is a sealed interface over the field values records carry.
type Native interface {
	Kind() Kind
	native()
}

// Nil is the absent field value. Its Kind is zero.
type Nil struct{}

func (Nil) native()    {}
func (Nil) Kind() Kind { return 0 }

// String is a text field.
type String string

func (String) native()    {}
func (String) Kind() Kind { return KindString }

// Int is a signed integer field of any width.
type Int int64

func (Int) native()    {}
func (Int) Kind() Kind { return KindInt }

// Uint is an unsigned integer field of any width.
type Uint uint64

func (Uint) native()    {}
func (Uint) Kind() Kind { return KindUint }

// Float is a floating point field. Single precision is widened.
type Float float64

func (Float) native()    {}
func (Float) Kind() Kind { return KindFloat }

// Bytes is a blob field.
type Bytes []byte

func (Bytes) native()    {}
func (Bytes) Kind() Kind { return KindBlob }

// Identifier is a 128-bit UUID field.
type Identifier uuid.UUID

func (Identifier) native()    {}
func (Identifier) Kind() Kind { return KindIdentifier }

// String returns the canonical hyphenated form.
func (id Identifier) String() string { return uuid.UUID(id).String() }

// Interpreted carries the textual form of a value of any other kind.
type Interpreted struct {
	Text string
}

func (Interpreted) native()    {}
func (Interpreted) Kind() Kind { return KindInterpreted }

// Float32 widens a single precision value.
func Float32(f float32) Float { return Float(float64(f)) }

// UUID wraps a uuid.UUID.
func UUID(u uuid.UUID) Identifier { return Identifier(u) }

// Interpret stringifies a value that has no dedicated kind. TextMarshalers
// win, then JSON, then fmt. A nil input yields Nil.
func Interpret(v any) Native {
	if v == nil {
		return Nil{}
	}
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return Interpreted{Text: string(b)}
		}
	}
	if b, err := json.Marshal(v); err == nil {
		return Interpreted{Text: string(b)}
	}
	return Interpreted{Text: fmt.Sprint(v)}
}
