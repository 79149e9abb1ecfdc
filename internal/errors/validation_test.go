package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("customer_ref", "is required", "")

	if err.Field != "customer_ref" {
		t.Errorf("Expected field to be 'customer_ref', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'customer_ref': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("title", "is required", nil))
	expected := "validation failed: title is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("schema", "must be valid JSON", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("slug", "must contain only lowercase letters, digits and hyphens", "service_slug", "Flu Jab")

	if err.Rule != "service_slug" {
		t.Errorf("Expected rule to be 'service_slug', got '%s'", err.Rule)
	}

	if err.Field != "slug" {
		t.Errorf("Expected field to be 'slug', got '%s'", err.Field)
	}
}
