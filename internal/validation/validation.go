package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-auth-api/pkg/apierror"
)

// MaxPasswordBytes matches the input limit of bcrypt.
const MaxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so details line up with the request body.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := validate.RegisterValidation("password_policy", validatePasswordPolicy); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("password_bytes", validatePasswordBytes); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("username", validateUsername); err != nil {
		panic(err)
	}
}

// Struct validates s and converts failures into a VALIDATION_ERROR with one
// message per offending field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fieldKey(fe)
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = message(fe)
	}

	return apierror.Validation("Request validation failed", fields)
}

// PasswordPolicy reports whether password has an upper, a lower and a digit character.
func PasswordPolicy(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validatePasswordPolicy(fl validator.FieldLevel) bool {
	return PasswordPolicy(fl.Field().String())
}

// bcrypt ignores everything past MaxPasswordBytes, so longer input is refused
// before it reaches the hasher.
func validatePasswordBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// fieldKey keeps the list position for elements of slices, e.g. history[1].role.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if !strings.Contains(ns, "[") {
		return fe.Field()
	}
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "password_policy":
		return "must contain at least one uppercase letter, one lowercase letter and one digit"
	case "password_bytes":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	case "username":
		return "may only contain letters, digits, underscores and hyphens"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}
