package value

import "fmt"

// Kind is the semantic kind of a record field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindUint
	KindFloat
	KindBlob
	KindIdentifier
	// KindInterpreted covers everything else. Values are stringified to Text.
	KindInterpreted
)

var kindNames = map[Kind]string{
	KindString:      "string",
	KindInt:         "int",
	KindUint:        "uint",
	KindFloat:       "float",
	KindBlob:        "blob",
	KindIdentifier:  "identifier",
	KindInterpreted: "interpreted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind name as written in record definitions.
// Unknown names degrade to KindInterpreted.
func ParseKind(name string) Kind {
	switch name {
	case "string", "text":
		return KindString
	case "int", "int8", "int16", "int32", "int64", "integer":
		return KindInt
	case "uint", "uint8", "uint16", "uint32", "uint64":
		return KindUint
	case "float", "float32", "float64", "double", "real":
		return KindFloat
	case "blob", "bytes", "data":
		return KindBlob
	case "identifier", "uuid":
		return KindIdentifier
	default:
		return KindInterpreted
	}
}

// ColumnType is the declared SQL type used when the kind becomes a column.
// Identifiers are declared TEXT even though they bind as blobs.
func (k Kind) ColumnType() string {
	switch k {
	case KindInt, KindUint:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// Storage is the primitive a non-nil value of this kind is written as.
func (k Kind) Storage() StorageClass {
	switch k {
	case KindInt, KindUint:
		return ClassInteger
	case KindFloat:
		return ClassReal
	case KindBlob, KindIdentifier:
		return ClassBlob
	default:
		return ClassText
	}
}

// Compatible reports whether values of kind other can be written into a
// column registered as k without changing its storage primitive.
func (k Kind) Compatible(other Kind) bool {
	return k.Storage() == other.Storage()
}

// KindForColumnType maps a declared SQL type back to a kind. Identifier
// columns are indistinguishable from text here.
func KindForColumnType(declared string) Kind {
	switch declared {
	case "TEXT":
		return KindString
	case "INTEGER":
		return KindInt
	case "REAL":
		return KindFloat
	case "BLOB":
		return KindBlob
	default:
		return KindInterpreted
	}
}
