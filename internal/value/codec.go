package value

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Encode maps a native value to the primitive it is bound as.
// Identifiers become 16-byte blobs; Interpreted values become Text.
func Encode(n Native) Primitive {
	switch v := n.(type) {
	case nil, Nil:
		return Null{}
	case String:
		return Text(v)
	case Int:
		return Integer(v)
	case Uint:
		// Values above MaxInt64 wrap. Documented boundary.
		return Integer(int64(v))
	case Float:
		return Real(v)
	case Bytes:
		if v == nil {
			return Null{}
		}
		return Blob(v)
	case Identifier:
		b := uuid.UUID(v)
		return Blob(b[:])
	case Interpreted:
		return Text(v.Text)
	default:
		panic(fmt.Sprintf("value: unknown native type %T", n))
	}
}

// Decode maps a primitive back to a native value of the expected kind.
// Null always decodes to Nil regardless of kind.
func Decode(p Primitive, kind Kind) (Native, error) {
	if p == nil {
		return Nil{}, nil
	}
	if _, ok := p.(Null); ok {
		return Nil{}, nil
	}

	switch kind {
	case KindString:
		switch v := p.(type) {
		case Text:
			return String(v), nil
		case Integer:
			return String(strconv.FormatInt(int64(v), 10)), nil
		case Real:
			return String(strconv.FormatFloat(float64(v), 'g', -1, 64)), nil
		}
	case KindInt:
		switch v := p.(type) {
		case Integer:
			return Int(v), nil
		case Real:
			return Int(int64(v)), nil
		}
	case KindUint:
		switch v := p.(type) {
		case Integer:
			return Uint(uint64(v)), nil
		case Real:
			return Uint(uint64(v)), nil
		}
	case KindFloat:
		switch v := p.(type) {
		case Real:
			return Float(v), nil
		case Integer:
			return Float(float64(v)), nil
		}
	case KindBlob:
		switch v := p.(type) {
		case Blob:
			return Bytes(v), nil
		case Text:
			return Bytes(v), nil
		}
	case KindIdentifier:
		switch v := p.(type) {
		case Blob:
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("decode identifier: %w", err)
			}
			return Identifier(u), nil
		case Text:
			u, err := uuid.Parse(string(v))
			if err != nil {
				return nil, fmt.Errorf("decode identifier: %w", err)
			}
			return Identifier(u), nil
		}
	case KindInterpreted:
		switch v := p.(type) {
		case Text:
			return Interpreted{Text: string(v)}, nil
		case Integer:
			return Interpreted{Text: strconv.FormatInt(int64(v), 10)}, nil
		case Real:
			return Interpreted{Text: strconv.FormatFloat(float64(v), 'g', -1, 64)}, nil
		case Blob:
			return Interpreted{Text: string(v)}, nil
		}
	default:
		return nil, fmt.Errorf("decode: unknown kind %s", kind)
	}
	return nil, fmt.Errorf("decode: cannot read %s as %s", p.Class(), kind)
}

// Natural decodes a primitive using the kind its storage class implies.
// Used for columns the registry has no kind for.
func Natural(p Primitive) Native {
	switch v := p.(type) {
	case Text:
		return String(v)
	case Integer:
		return Int(v)
	case Real:
		return Float(v)
	case Blob:
		return Bytes(v)
	default:
		return Nil{}
	}
}

// Arg converts a primitive into a database/sql argument.
func Arg(p Primitive) any {
	switch v := p.(type) {
	case Text:
		return string(v)
	case Integer:
		return int64(v)
	case Real:
		return float64(v)
	case Blob:
		return []byte(v)
	default:
		return nil
	}
}

// Args converts a parameter list for positional binding.
func Args(ps []Primitive) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		out[i] = Arg(p)
	}
	return out
}

// FromDriver converts a value scanned by database/sql into a primitive.
func FromDriver(v any) (Primitive, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case int64:
		return Integer(val), nil
	case float64:
		return Real(val), nil
	case string:
		return Text(val), nil
	case []byte:
		b := make([]byte, len(val))
		copy(b, val)
		return Blob(b), nil
	case bool:
		if val {
			return Integer(1), nil
		}
		return Integer(0), nil
	case time.Time:
		return Text(val.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported driver value type: %T", v)
	}
}
