// Package schema holds the dialect-agnostic table, column and diff value
// objects consumed by the SQL platforms.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned when a snapshot names a column type that is not registered.
var ErrUnknownType = errors.New("unknown column type")

// Type identifies the abstract type of a column
type Type string

const (
	TypeSmallInt   Type = "smallint"
	TypeInteger    Type = "integer"
	TypeBigInt     Type = "bigint"
	TypeDecimal    Type = "decimal"
	TypeFloat      Type = "float"
	TypeString     Type = "string"
	TypeText       Type = "text"
	TypeGUID       Type = "guid"
	TypeBinary     Type = "binary"
	TypeBlob       Type = "blob"
	TypeBoolean    Type = "boolean"
	TypeDate       Type = "date"
	TypeTime       Type = "time"
	TypeDateTime   Type = "datetime"
	TypeDateTimeTZ Type = "datetimetz"
	TypeJSON       Type = "json"
	TypeJSONB      Type = "jsonb"
)

var knownTypes = map[Type]struct{}{
	TypeSmallInt: {}, TypeInteger: {}, TypeBigInt: {}, TypeDecimal: {}, TypeFloat: {},
	TypeString: {}, TypeText: {}, TypeGUID: {}, TypeBinary: {}, TypeBlob: {},
	TypeBoolean: {}, TypeDate: {}, TypeTime: {}, TypeDateTime: {}, TypeDateTimeTZ: {},
	TypeJSON: {}, TypeJSONB: {},
}

// ParseType resolves a type name, accepting a few common aliases.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "int", "int4":
		n = string(TypeInteger)
	case "int2":
		n = string(TypeSmallInt)
	case "int8":
		n = string(TypeBigInt)
	case "numeric":
		n = string(TypeDecimal)
	case "varchar":
		n = string(TypeString)
	case "uuid":
		n = string(TypeGUID)
	case "bytea":
		n = string(TypeBlob)
	case "bool":
		n = string(TypeBoolean)
	case "timestamp":
		n = string(TypeDateTime)
	case "timestamptz":
		n = string(TypeDateTimeTZ)
	}

	t := Type(n)
	if _, ok := knownTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// IsBinary reports whether the type belongs to the binary family.
func (t Type) IsBinary() bool {
	return t == TypeBinary || t == TypeBlob
}

// IsInteger reports whether values of the type map to integers.
func (t Type) IsInteger() bool {
	return t == TypeSmallInt || t == TypeInteger || t == TypeBigInt
}

// IsTemporal reports whether the type stores a date, a time or both.
func (t Type) IsTemporal() bool {
	switch t {
	case TypeDate, TypeTime, TypeDateTime, TypeDateTimeTZ:
		return true
	}
	return false
}

// HasLength reports whether the length property is meaningful for the type.
func (t Type) HasLength() bool {
	return t == TypeString || t.IsBinary()
}
