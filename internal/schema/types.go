package schema

import "fmt"

// Kind is the primitive kind of a column.
type Kind uint8

// Column kinds. KindUnsupported covers every database type that has no
// primitive Go counterpart (dates, numerics, blobs, json, ...).
const (
	KindUnsupported Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
)

var kindNames = [...]string{
	KindUnsupported: "unsupported",
	KindBool:        "bool",
	KindInt8:        "int8",
	KindInt16:       "int16",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindUint8:       "uint8",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindFloat32:     "float32",
	KindFloat64:     "float64",
	KindString:      "string",
}

// String returns the Go type name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Supported reports whether values of this kind can be rendered.
func (k Kind) Supported() bool {
	return k > KindUnsupported && k <= KindString
}

// Bits returns the bit size of integer and float kinds, 0 otherwise.
func (k Kind) Bits() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	default:
		return 0
	}
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool { return k >= KindInt8 && k <= KindInt64 }

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool { return k >= KindUint8 && k <= KindUint64 }

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool { return k == KindFloat32 || k == KindFloat64 }

// Table represents a database table
type Table struct {
	Name    string   `msgpack:"name"`
	Columns []Column `msgpack:"columns"`
	// PrimaryKey holds the key column names in key order.
	PrimaryKey []string `msgpack:"primary_key"`
}

// Column represents a table column
type Column struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Kind     Kind   `msgpack:"kind"`
	Nullable bool   `msgpack:"nullable"`
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// KeyColumns returns the column positions of the primary key in key order.
func (t *Table) KeyColumns() ([]int, error) {
	ids := make([]int, 0, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		i := t.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("primary key column %q not found in table %s", name, t.Name)
		}
		ids = append(ids, i)
	}
	return ids, nil
}

// Row holds one value per table column, indexed by column position.
type Row []Value

// RowSet is a fully materialized snapshot of a table.
type RowSet struct {
	Table Table `msgpack:"table"`
	Rows  []Row `msgpack:"rows"`
}
