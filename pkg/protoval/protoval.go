// Package protoval converts expression results to protobuf well-known
// types, for callers that ship results over gRPC or as canonical JSON.
package protoval

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Value converts a result to a structpb.Value.
//
// Numbers become JSON numbers when float64 holds them exactly and strings
// otherwise, so no digits are lost. Timestamps become RFC 3339 strings.
// Non-canonical numeric kinds are widened first.
func Value(v any) (*structpb.Value, error) {
	switch x := v.(type) {
	case nil:
		return structpb.NewNullValue(), nil
	case string:
		return structpb.NewStringValue(x), nil
	case bool:
		return structpb.NewBoolValue(x), nil
	case decimal.Decimal:
		return number(x), nil
	case time.Time:
		return structpb.NewStringValue(x.UTC().Format(time.RFC3339Nano)), nil
	case []any:
		return list(x)
	case []string:
		return list(x)
	case []bool:
		return list(x)
	case []decimal.Decimal:
		return list(x)
	case []time.Time:
		return list(x)
	}

	c, _, err := types.Canonical(v)
	if err != nil {
		return nil, fmt.Errorf("protoval: %w", err)
	}
	return Value(c)
}

func number(d decimal.Decimal) *structpb.Value {
	if f, exact := d.Float64(); exact {
		return structpb.NewNumberValue(f)
	}
	return structpb.NewStringValue(d.String())
}

func list[E any](items []E) (*structpb.Value, error) {
	values := make([]*structpb.Value, len(items))
	for i, item := range items {
		v, err := Value(item)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
}

// Timestamp converts a timestamp result.
func Timestamp(t time.Time) *timestamppb.Timestamp {
	return timestamppb.New(t)
}

// MarshalJSON renders a result as protobuf canonical JSON.
func MarshalJSON(v any) ([]byte, error) {
	pv, err := Value(v)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(pv)
}
