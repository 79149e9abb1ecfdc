package utils

import (
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/careforms/intake-service/internal/errors"
	"github.com/careforms/intake-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom rules
// and translates failures into the shared ValidationErrors type.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Struct validates a request struct and returns ValidationErrors, or nil
// when the struct passes.
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Engine exposes the underlying validator for gin binding integration.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Custom validation functions

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func ValidateSessionStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.SessionStatus{
		models.SessionInProgress,
		models.SessionCompleted,
		models.SessionAbandoned,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func ValidateAppointmentStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.AppointmentStatus{
		models.AppointmentBooked,
		models.AppointmentCancelled,
		models.AppointmentCompleted,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func ValidateServiceSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func ValidateClockTime(fl validator.FieldLevel) bool {
	return clockPattern.MatchString(fl.Field().String())
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("session_status", ValidateSessionStatus)
	validate.RegisterValidation("appointment_status", ValidateAppointmentStatus)
	validate.RegisterValidation("service_slug", ValidateServiceSlug)
	validate.RegisterValidation("clock_time", ValidateClockTime)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
