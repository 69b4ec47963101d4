// Package validation checks client input before anything is written.
//
// Rules that only look at the input are expressed as validator struct tags.
// Rules that need the store (uniqueness, foreign keys) go through the lookup
// interfaces below, so this package never talks to the database itself.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Error describes the first field that failed validation.
type Error struct {
	Field   string
	Message string
	Input   any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newError(field, message string, input any) *Error {
	return &Error{Field: field, Message: message, Input: input}
}

// CollectionLookup answers the store questions collection rules depend on.
type CollectionLookup interface {
	CollectionTitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	CollectionExists(ctx context.Context, id uint) (bool, error)
}

// ProductLookup answers the store questions product rules depend on.
type ProductLookup interface {
	ProductTitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	// Report fields by their form name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkStruct runs the tag rules on s and converts the first failure.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err
	}

	fe := validationErrors[0]
	return newError(fe.Field(), describe(fe), fe.Value())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "notblank":
		return "must not be blank"
	case "alphanumunicode":
		return "must contain only letters and digits"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
