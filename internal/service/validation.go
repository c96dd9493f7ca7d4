package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"storyloom/internal/errs"
	"storyloom/internal/models"
)

// NewValidator returns a validator that reports JSON field names and knows
// the "category" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})

	return v
}

// ValidationError turns validator output into a Validation error naming the first failure.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Wrap(errs.Validation, "Invalid request", err)
	}

	fe := verrs[0]
	field := fe.Field()
	label := strings.ToUpper(field[:1]) + field[1:]

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", label)
	case "email":
		msg = "Please provide a valid email"
	case "min":
		if fe.Param() == "1" {
			msg = fmt.Sprintf("%s cannot be empty", label)
		} else {
			msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
	case "max":
		msg = fmt.Sprintf("%s cannot be more than %s characters", label, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "category":
		names := make([]string, len(models.Categories))
		for i, c := range models.Categories {
			names[i] = string(c)
		}
		msg = fmt.Sprintf("Category must be one of: %s", strings.Join(names, ", "))
	default:
		msg = fmt.Sprintf("%s is invalid", label)
	}

	return errs.NewValidation(msg)
}
