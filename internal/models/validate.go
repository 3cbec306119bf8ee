package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = NewValidator()

// NewValidator returns a validator with the "notblank" rule registered.
// notblank rejects strings that are empty after trimming whitespace.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(field.String()) != ""
	})
	return v
}

// ValidateDraft checks a draft before it is sent anywhere
func ValidateDraft(draft any) error {
	return validate.Struct(draft)
}
