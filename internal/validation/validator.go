// Package validation checks and cleans request input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"agora/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// MaxTextLength caps post and comment bodies.
const MaxTextLength = 5000

var (
	validate = newValidate()
	strict   = bluemonday.StrictPolicy()
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags. Failures come back as a
// VALIDATION_ERROR AppError carrying one FieldError per offending field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make([]models.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, models.FieldError{
			Msg:      message(fe),
			Param:    fe.Field(),
			Location: "body",
			Value:    fe.Value(),
		})
	}
	return models.NewFieldValidationError(fields)
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// SanitizeText strips all markup from s and trims surrounding whitespace.
// The result is plain text: entities escaped by the policy are decoded again
// so punctuation is stored as typed.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
