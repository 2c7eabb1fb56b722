package handler

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// formatValidationError converts validator errors to stable, user-facing
// messages. Field names are reported in snake_case to match the JSON wire
// format.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := snakeCase(fe.Field())

			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be blank"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			case "min":
				return "invalid request: " + field + " has too few entries"
			case "gte":
				return "invalid request: " + field + " is below the minimum value"
			case "lte":
				return "invalid request: " + field + " is above the maximum value"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// snakeCase converts an exported Go field name like "CouponCode" or
// "PaymentID" to its JSON wire form ("coupon_code", "payment_id").
func snakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(prev) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
