// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/go-user-gate/models"
)

// tagOTPCode accepts exactly models.OTPLength ASCII digits. The built-in
// "numeric" tag would also let signs and decimal points through.
const tagOTPCode = "otpcode"

// RequestValidator validates the request models of the HTTP API.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator constructs a RequestValidator with the custom rules
// registered. It panics if a rule cannot be registered, which is a
// programming error.
func NewRequestValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(tagOTPCode, validateOTPCode); err != nil {
		panic(fmt.Sprintf("failed to register validation tag %q: %v", tagOTPCode, err))
	}

	return &RequestValidator{validate: v}
}

// Validate checks obj, a request struct or a pointer to one. When fields are
// given, only those struct fields (Go names) are checked.
//
// Returns *ValidationError for rejected input, ErrUnsupportedType for
// anything that is not a struct and ErrUnknownField for a field name the
// struct does not have.
func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	if !isStruct(obj) {
		return ErrUnsupportedType
	}

	var err error
	if len(fields) == 0 {
		err = v.validate.StructCtx(ctx, obj)
	} else {
		if unknown := unknownField(obj, fields); unknown != "" {
			return fmt.Errorf("%w: %s", ErrUnknownField, unknown)
		}
		err = v.validate.StructPartialCtx(ctx, obj, fields...)
	}
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := &ValidationError{Fields: make(map[string]string, len(validationErrors))}
	for _, fe := range validationErrors {
		result.Fields[fe.Field()] = errorMessage(fe)
	}

	return result
}

func validateOTPCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != models.OTPLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case tagOTPCode:
		return fmt.Sprintf("must be %d digits", models.OTPLength)
	default:
		return fmt.Sprintf("is invalid (failed on '%s')", fe.Tag())
	}
}

func isStruct(obj any) bool {
	t := reflect.TypeOf(obj)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(obj).IsNil() {
			return false
		}
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func unknownField(obj any, fields []string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, f := range fields {
		if _, ok := t.FieldByName(f); !ok {
			return f
		}
	}
	return ""
}
