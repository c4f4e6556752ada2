package db

import (
	"strings"

	"github.com/tordrt/symbols/internal/schema"
)

// postgresKind maps an information_schema data_type to a column kind.
func postgresKind(dataType string) schema.Kind {
	switch dataType {
	case "boolean":
		return schema.KindBool
	case "smallint":
		return schema.KindInt16
	case "integer":
		return schema.KindInt32
	case "bigint":
		return schema.KindInt64
	case "real":
		return schema.KindFloat32
	case "double precision":
		return schema.KindFloat64
	case "text", "character varying", "character", "name":
		return schema.KindString
	default:
		return schema.KindUnsupported
	}
}

// mysqlKind maps a MySQL data_type and column_type to a column kind.
// tinyint(1) is MySQL's boolean.
func mysqlKind(dataType, columnType string) schema.Kind {
	dataType = strings.ToLower(dataType)
	columnType = strings.ToLower(columnType)
	unsigned := strings.Contains(columnType, "unsigned")
	pick := func(signed, uns schema.Kind) schema.Kind {
		if unsigned {
			return uns
		}
		return signed
	}
	switch dataType {
	case "bool", "boolean":
		return schema.KindBool
	case "tinyint":
		if strings.HasPrefix(columnType, "tinyint(1)") {
			return schema.KindBool
		}
		return pick(schema.KindInt8, schema.KindUint8)
	case "smallint":
		return pick(schema.KindInt16, schema.KindUint16)
	case "mediumint", "int", "integer":
		return pick(schema.KindInt32, schema.KindUint32)
	case "bigint":
		return pick(schema.KindInt64, schema.KindUint64)
	case "float":
		return schema.KindFloat32
	case "double", "real":
		return schema.KindFloat64
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return schema.KindString
	default:
		return schema.KindUnsupported
	}
}

// sqliteKind maps a declared SQLite column type to a column kind following
// the type affinity rules. Booleans are checked first since SQLite has no
// boolean affinity.
func sqliteKind(declType string) schema.Kind {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "BOOL"):
		return schema.KindBool
	case strings.Contains(t, "INT"):
		return schema.KindInt64
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return schema.KindString
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return schema.KindFloat64
	default:
		return schema.KindUnsupported
	}
}
