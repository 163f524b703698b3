package columns

import (
	"fmt"
	"strings"
)

// CellType is the data type a value is written with.
type CellType int

const (
	// TypeAbsent means no type was declared; the value's kind decides.
	TypeAbsent CellType = iota
	TypeString
	TypeNumber
	TypeBool
	TypeNull
)

func (t CellType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeNull:
		return "null"
	default:
		return ""
	}
}

// ParseCellType converts a type name from a column mapping file.
// An empty name yields TypeAbsent.
func ParseCellType(s string) (CellType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TypeAbsent, nil
	case "string", "str", "text":
		return TypeString, nil
	case "number", "numeric", "int", "float":
		return TypeNumber, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "null", "blank":
		return TypeNull, nil
	}
	return TypeAbsent, fmt.Errorf("unknown cell type %q", s)
}

// Infer maps a value to the cell type of its native kind.
func Infer(v any) CellType {
	switch v.(type) {
	case nil:
		return TypeNull
	case string, []byte:
		return TypeString
	case bool:
		return TypeBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return TypeNumber
	}
	return TypeString
}

// Resolve returns declared unless it is TypeAbsent, in which case the type is
// inferred from v.
func Resolve(declared CellType, v any) CellType {
	if declared != TypeAbsent {
		return declared
	}
	return Infer(v)
}
