package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces an untyped payload value into an exact decimal.
// Numbers and numeric strings are accepted; booleans, nulls, empty strings
// and non-numeric values fail with ErrInvalidAmount.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("%w: amount is null", ErrInvalidAmount)
	case decimal.Decimal:
		return x, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, x.String())
		}

		return d, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, fmt.Errorf("%w: amount is empty", ErrInvalidAmount)
		}

		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}

		return d, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

// ParsePositiveAmount parses and additionally requires amount > 0.
func ParsePositiveAmount(v any) (decimal.Decimal, error) {
	d, err := ParseAmount(v)
	if err != nil {
		return decimal.Zero, err
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidAmount, d.String())
	}

	return d, nil
}
