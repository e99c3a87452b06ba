package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "warehouse-manager/pkg/errors"
)

var (
	validate *validator.Validate

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Messages name fields the way clients send them.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(validate.RegisterValidation("username", validateUsername))
	must(validate.RegisterValidation("warehouse_type", validateWarehouseType))
	must(validate.RegisterValidation("area_method", validateAreaMethod))
	// max counts runes; maxbytes counts encoded bytes (bcrypt reads at most 72).
	must(validate.RegisterValidation("maxbytes", validateMaxBytes))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidateStruct runs tag validation and converts failures into a
// VALIDATION_ERROR AppError listing every offending field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Validation(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return appErrors.Validation(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "username":
		return fmt.Sprintf("%s may only contain letters, digits, '_', '.' and '-'", field)
	case "warehouse_type":
		return fmt.Sprintf("%s must be 'open' or 'closed'", field)
	case "area_method":
		return fmt.Sprintf("%s must be 'map' or 'manual'", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validateWarehouseType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "open", "closed":
		return true
	}
	return false
}

func validateAreaMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "map", "manual":
		return true
	}
	return false
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("maxbytes: bad parameter %q", fl.Param()))
	}
	return len(fl.Field().String()) <= limit
}
