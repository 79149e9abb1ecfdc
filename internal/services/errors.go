package services

import (
	"errors"
	"fmt"

	apperrors "github.com/careforms/intake-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Form specific errors
	ErrFormNotFound     = errors.New("intake form not found")
	ErrFormNotActive    = errors.New("intake form is not active")
	ErrFormNotDeletable = errors.New("intake form cannot be deleted - has existing sessions")
	ErrFormEmptySchema  = errors.New("intake form schema contains no questions")

	// Session specific errors
	ErrSessionNotFound         = errors.New("intake session not found")
	ErrSessionNotActive        = errors.New("intake session is not in progress")
	ErrSessionAlreadySubmitted = errors.New("intake session already submitted")
	ErrSessionIncomplete       = errors.New("intake session has unanswered required questions")
	ErrSessionStaleVersion     = errors.New("intake session references an outdated form version")

	// Offering specific errors
	ErrOfferingNotFound      = errors.New("service offering not found")
	ErrOfferingNotActive     = errors.New("service offering is not active")
	ErrOfferingDuplicateSlug = errors.New("service offering slug already exists")
	ErrOfferingNoSchedule    = errors.New("service offering has no schedule configured")

	// Appointment specific errors
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAppointmentCancelled = errors.New("appointment is already cancelled")
	ErrSlotUnavailable      = errors.New("requested slot is not available")
	ErrSlotOutsideHours     = errors.New("requested slot is outside working hours")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrOfferingNotFound) ||
		errors.Is(err, ErrAppointmentNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrFormNotDeletable) ||
		errors.Is(err, ErrSessionAlreadySubmitted) ||
		errors.Is(err, ErrOfferingDuplicateSlug) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrAppointmentCancelled)
}
