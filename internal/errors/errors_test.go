package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrNotFound is recognized",
			err:      ErrNotFound,
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Joined ErrNotFound is recognized",
			err:      errors.Join(ErrNotFound, errors.New("additional context")),
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Different error is not ErrNotFound",
			err:      ErrRateLimitExceeded,
			checkFn:  IsNotFound,
			expected: false,
		},
		{
			name:     "ValidationError is invalid input",
			err:      NewValidationError("message", "is required"),
			checkFn:  IsInvalidInput,
			expected: true,
		},
		{
			name:     "Wrapped duplicate is recognized",
			err:      fmt.Errorf("create user: %w", ErrAlreadyExists),
			checkFn:  IsAlreadyExists,
			expected: true,
		},
		{
			name:     "ErrUnauthorized is recognized",
			err:      ErrUnauthorized,
			checkFn:  IsUnauthorized,
			expected: true,
		},
		{
			name:     "ErrRateLimitExceeded is recognized",
			err:      ErrRateLimitExceeded,
			checkFn:  IsRateLimitExceeded,
			expected: true,
		},
		{
			name:     "Wrapped timeout is recognized",
			err:      fmt.Errorf("oracle: %w", ErrTimeout),
			checkFn:  IsTimeout,
			expected: true,
		},
		{
			name:     "ErrUnavailable is recognized",
			err:      ErrUnavailable,
			checkFn:  IsUnavailable,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.checkFn(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := NewValidationError("country", "is required")

	if err.Field != "country" {
		t.Errorf("expected field 'country', got '%s'", err.Field)
	}

	expected := "validation failed on country: is required"
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("validation error should unwrap to ErrInvalidInput")
	}
}

func TestRequired(t *testing.T) {
	t.Parallel()

	if err := Required("city", "Seoul"); err != nil {
		t.Errorf("expected nil for non-empty value, got %v", err)
	}

	err := Required("city", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "city" {
		t.Errorf("expected field 'city', got '%s'", verr.Field)
	}
}

func TestDataError(t *testing.T) {
	t.Parallel()
	baseErr := errors.New("unexpected EOF")
	err := NewDataError("locations.json", baseErr)

	expected := "reference data error (source=locations.json): unexpected EOF"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if !errors.Is(err, baseErr) {
		t.Error("data error should unwrap to its cause")
	}
}
