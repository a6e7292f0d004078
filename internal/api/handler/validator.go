package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages follow the json tags.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures are returned as
// *domain.ValidationError with one "<field>: <message>" entry per problem.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			details := make([]string, 0, len(ve))
			for _, fe := range ve {
				details = append(details, fieldError(fe))
			}
			return &domain.ValidationError{Details: details}
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a "<field>: <message>" line.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "email":
		return field + ": must be a valid email"
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s: failed validation (%s)", field, fe.Tag())
	}
}
