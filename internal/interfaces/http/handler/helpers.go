package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseDecimal parses a monetary amount bound as a string. Requests carry
// amounts as strings validated by the `dec` binding rule, so the value never
// passes through a binary float.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// parseDecimalOrZero parses an optional amount, treating empty as zero
func parseDecimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseDate parses a date in YYYY-MM-DD form, falling back to RFC3339
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseUUIDPtr parses an optional UUID string; nil in means nil out
func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// uuidPtrToString renders an optional UUID for API responses
func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
