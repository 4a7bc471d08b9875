package validation

import (
	"strings"
	"testing"

	"github.com/guardkit/guardkit/errors"
)

type testPolicy struct {
	MaxRequests int     `validate:"gte=0"`
	Multiplier  float64 `validate:"omitempty,gt=1"`
	Strategy    string  `validate:"omitempty,oneof=queue delay reject"`
}

func TestValidate_Passes(t *testing.T) {
	p := testPolicy{MaxRequests: 10, Multiplier: 2.0, Strategy: "queue"}
	if err := Validate(p); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestValidate_ZeroValuesAllowedWithOmitempty(t *testing.T) {
	p := testPolicy{}
	if err := Validate(p); err != nil {
		t.Errorf("expected valid zero policy, got %v", err)
	}
}

func TestValidate_FailsWithFieldDetails(t *testing.T) {
	p := testPolicy{MaxRequests: -1, Multiplier: 0.5, Strategy: "drop"}

	err := Validate(p)
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if appErr.Retryable {
		t.Error("validation errors must not be retryable")
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected []FieldError details, got %T", appErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(fields), fields)
	}
	if !strings.Contains(appErr.Message, "max_requests") {
		t.Errorf("expected snake_case field names in message, got %q", appErr.Message)
	}
	if !strings.Contains(appErr.Message, "must be one of: queue delay reject") {
		t.Errorf("expected oneof message, got %q", appErr.Message)
	}
}
