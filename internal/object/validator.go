package object

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator: validation and sanitization of inbound object payloads
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewValidator() *Validator {
	// removes all HTML/scripts
	policy := bluemonday.StrictPolicy()

	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: policy,
	}
}

// Vet checks a decoded object against its kind's constraints and returns a
// sanitized copy. Unknown kinds pass through untouched so forward-compatible
// payloads are not rejected here.
func (v *Validator) Vet(obj Object) (Object, error) {
	switch o := obj.(type) {
	case Text:
		o.Text = v.sanitizer.Sanitize(o.Text)
		if err := v.validate.Struct(o); err != nil {
			return nil, wrapValidationError(err)
		}
		return o, nil
	case Image:
		if err := v.validate.Struct(o); err != nil {
			return nil, wrapValidationError(err)
		}
		return o, nil
	default:
		return obj, nil
	}
}

// wrapValidationError converts validator errors to a user-friendly message.
// Only the first failure is reported.
func wrapValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}
	return fmt.Errorf("validation failed: %s", formatSingleError(validationErrors[0]))
}

// formatSingleError formats a single validation error with common cases
func formatSingleError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "min", "max":
		return fmt.Sprintf("'%s' value out of allowed range", field)
	case "url":
		return fmt.Sprintf("'%s' must be a valid URL", field)
	default:
		return fmt.Sprintf("'%s' is invalid", field)
	}
}
