// Package validation provides typed input structs and field-level
// validation for user-supplied data.
package validation

import (
	"errors"
	"fmt"

	"inkwell/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PostInput is the submitted form for creating or editing a post.
// Group and image are optional; text is required and must be non-empty.
type PostInput struct {
	Text     string `json:"text" validate:"required,min=1,max=40000"`
	GroupID  *uint  `json:"group_id" validate:"omitempty,gt=0"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=2048"`
}

// CommentInput is the submitted form for adding a comment to a post.
type CommentInput struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// Check validates the given input struct and returns a structured
// per-field error list, or nil when the input is valid.
func Check(input any) []models.FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return []models.FieldError{{Field: "", Message: invalid.Error()}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "This field is required and may not be empty"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "url":
		return "Must be a valid URL"
	case "gt":
		return "Must be a positive identifier"
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
