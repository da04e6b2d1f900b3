package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"LoanPredictor/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the payload the client sent
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// numeric tags on util.Number apply to the decoded value
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if n, ok := v.Interface().(util.Number); ok {
			return n.Float()
		}
		return nil
	}, util.Number{})
}

// ReadAndValidateRequest binds the request into req, applies `default`
// tags and validates it. The returned error, if any, is an *AppError.
func ReadAndValidateRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	return ValidateStruct(c.Request().Context(), req)
}

// ValidateStruct applies `default` tags to req and validates it.
func ValidateStruct(ctx context.Context, req interface{}) error {
	if err := defaults.Set(req); err != nil {
		return InvalidInputError("", "invalid request").WithError(err)
	}
	if err := validate.StructCtx(ctx, req); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidationErrors lists every failed rule of a validation error.
func ValidationErrors(err error) []ValidationError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	out := make([]ValidationError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: getErrorMessage(fe),
		})
	}
	return out
}

func validationError(err error) *AppError {
	if list := ValidationErrors(err); len(list) > 0 {
		return InvalidInputError(list[0].Field, list[0].Message).WithError(err)
	}
	return InvalidInputError("", "invalid request").WithError(err)
}

func bindError(err error) *AppError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return InvalidInputError("", "invalid request body").WithError(err)
	}
	return InvalidInputError("", "invalid request").WithError(err)
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
