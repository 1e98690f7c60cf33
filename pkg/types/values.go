package types

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept by Div.
const DivisionScale = 28

// Canonical normalises v to the representation of its static type.
// Every integer and floating point kind becomes a decimal.Decimal.
func Canonical(v any) (any, Type, error) {
	switch x := v.(type) {
	case string:
		return x, Text, nil
	case bool:
		return x, Boolean, nil
	case time.Time:
		return x, Timestamp, nil
	case decimal.Decimal:
		return x, Number, nil
	case *decimal.Decimal:
		if x == nil {
			break
		}
		return *x, Number, nil
	case int:
		return decimal.NewFromInt(int64(x)), Number, nil
	case int8:
		return decimal.NewFromInt(int64(x)), Number, nil
	case int16:
		return decimal.NewFromInt(int64(x)), Number, nil
	case int32:
		return decimal.NewFromInt32(x), Number, nil
	case int64:
		return decimal.NewFromInt(x), Number, nil
	case uint:
		return fromUint(uint64(x)), Number, nil
	case uint8:
		return fromUint(uint64(x)), Number, nil
	case uint16:
		return fromUint(uint64(x)), Number, nil
	case uint32:
		return fromUint(uint64(x)), Number, nil
	case uint64:
		return fromUint(x), Number, nil
	case float32:
		return decimal.NewFromFloat32(x), Number, nil
	case float64:
		return decimal.NewFromFloat(x), Number, nil
	}
	return nil, Invalid, fmt.Errorf("unsupported value type %T", v)
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

// MustCanonical is like Canonical but panics on unsupported values.
func MustCanonical(v any) any {
	c, _, err := Canonical(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Equal reports whether two canonical values of the same static type are
// equal. Numbers compare by value and timestamps by instant.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return false
}

// IsZero reports whether v is a numeric zero.
func IsZero(v any) bool {
	d, ok := v.(decimal.Decimal)
	return ok && d.IsZero()
}

// Div divides a by b, keeping DivisionScale fractional digits.
// It panics when b is zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, DivisionScale)
}

// Mod returns the remainder of a / b, carrying the sign of a.
// It panics when b is zero.
func Mod(a, b decimal.Decimal) decimal.Decimal {
	return a.Mod(b)
}

// ErrDivisionByZero is raised when a divisor evaluates to zero at run time.
// Constant zero divisors are rejected at compile time with ErrDivideByZero.
var ErrDivisionByZero = errors.New("exprlite: division by zero")
