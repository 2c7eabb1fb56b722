package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v := New()
	require.NotNil(t, v, "New() should return a non-nil validator")
}

// TestNotblankValidator tests the custom notblank validation against the
// kind of free-text fields the API carries (coupon codes, addresses, reasons).
func TestNotblankValidator(t *testing.T) {
	v := New()

	type cancelRequest struct {
		Reason string `validate:"notblank"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid_string", "changed my mind", false},
		{"valid_with_spaces", "  changed my mind  ", false},
		{"whitespace_only_spaces", "   ", true},
		{"whitespace_only_tabs", "\t\t", true},
		{"whitespace_mixed", " \t\n ", true},
		{"empty_string", "", true},
		{"single_char", "a", false},
		{"unicode_content", "日本語", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(cancelRequest{Reason: tc.input})

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNotblankCombinedWithOtherTags verifies notblank composes with required
// and max the way the request structs use it.
func TestNotblankCombinedWithOtherTags(t *testing.T) {
	v := New()

	type couponRequest struct {
		Code string `validate:"required,notblank,max=10"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid", "SANTA25", false},
		{"valid_max_length", "1234567890", false},
		{"exceeds_max", "12345678901", true},
		{"whitespace_only", "   ", true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(couponRequest{Code: tc.input})

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNotblankOnNonStringField tests that notblank passes non-string fields
// through untouched.
func TestNotblankOnNonStringField(t *testing.T) {
	v := New()

	type quantityField struct {
		Quantity int `validate:"notblank"`
	}

	err := v.Struct(quantityField{Quantity: 0})
	assert.NoError(t, err, "notblank should pass for non-string types")
}
