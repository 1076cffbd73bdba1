package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	t.Run("numeric string", func(t *testing.T) {
		d, err := ParseAmount("123.45")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.Equal(decimal.RequireFromString("123.45")) {
			t.Fatalf("expected 123.45, got %s", d)
		}
	})

	t.Run("json number", func(t *testing.T) {
		d, err := ParseAmount(json.Number("6890"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.Equal(decimal.NewFromInt(6890)) {
			t.Fatalf("expected 6890, got %s", d)
		}
	})

	t.Run("float", func(t *testing.T) {
		d, err := ParseAmount(float64(500))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.Equal(decimal.NewFromInt(500)) {
			t.Fatalf("expected 500, got %s", d)
		}
	})

	t.Run("string is trimmed", func(t *testing.T) {
		d, err := ParseAmount("  42 ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.Equal(decimal.NewFromInt(42)) {
			t.Fatalf("expected 42, got %s", d)
		}
	})

	t.Run("rejects null", func(t *testing.T) {
		if _, err := ParseAmount(nil); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects boolean", func(t *testing.T) {
		if _, err := ParseAmount(true); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects empty string", func(t *testing.T) {
		if _, err := ParseAmount("   "); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects non-numeric string", func(t *testing.T) {
		if _, err := ParseAmount("twelve"); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestParsePositiveAmount(t *testing.T) {
	t.Parallel()

	if _, err := ParsePositiveAmount("0"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if _, err := ParsePositiveAmount("-5"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	d, err := ParsePositiveAmount("0.01")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !d.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected 0.01, got %s", d)
	}
}
