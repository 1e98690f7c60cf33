// Package types defines the static types of the expression language, the Go
// representation of their values and the structured errors shared by every
// compilation stage.
//
// The four static types map to Go as follows:
//
//	Text      string
//	Number    decimal.Decimal
//	Boolean   bool
//	Timestamp time.Time
//
// Values that enter the system from the embedder (plain bindings, member
// getters, compiled sub-expressions) are normalised with Canonical, which
// widens every Go numeric kind to decimal.Decimal.
package types

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the static type of an expression node.
type Type uint8

const (
	Invalid Type = iota
	Text
	Number
	Boolean
	Timestamp
)

var (
	textType      = reflect.TypeFor[string]()
	numberType    = reflect.TypeFor[decimal.Decimal]()
	booleanType   = reflect.TypeFor[bool]()
	timestampType = reflect.TypeFor[time.Time]()
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Timestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// Label returns the diagnostic label of the type.
func (t Type) Label() string {
	switch t {
	case Text:
		return "<string>"
	case Number:
		return "<numeric>"
	case Boolean:
		return "<boolean>"
	case Timestamp:
		return "<date-time>"
	default:
		return "<invalid>"
	}
}

// Valid reports whether t is one of the four static types.
func (t Type) Valid() bool {
	return t >= Text && t <= Timestamp
}

// GoType returns the canonical Go type for values of t, or nil for Invalid.
func (t Type) GoType() reflect.Type {
	switch t {
	case Text:
		return textType
	case Number:
		return numberType
	case Boolean:
		return booleanType
	case Timestamp:
		return timestampType
	default:
		return nil
	}
}

// TypeOf maps a canonical Go type back to its static type.
func TypeOf(rt reflect.Type) (Type, bool) {
	switch rt {
	case textType:
		return Text, true
	case numberType:
		return Number, true
	case booleanType:
		return Boolean, true
	case timestampType:
		return Timestamp, true
	default:
		return Invalid, false
	}
}

// ParseType resolves a type name as returned by Type.String.
func ParseType(name string) (Type, bool) {
	switch name {
	case "text", "string":
		return Text, true
	case "number", "numeric", "decimal":
		return Number, true
	case "boolean", "bool":
		return Boolean, true
	case "timestamp", "datetime", "date-time":
		return Timestamp, true
	default:
		return Invalid, false
	}
}
