package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	// Empty string clears the URL, anything else has to be URL
	validate.RegisterAlias("url_or_empty", "eq=|url")
	validate.RegisterTagNameFunc(useJSONTagNames)

	return validate
}

// Report fields by 'json' tag name instead of struct field name
// Look at documentation of 'RegisterTagNameFunc' for more details
func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Human readable message for failed validation tag
func fieldMessage(fe validator.FieldError) string {
	sized := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "notblank":
		return "This field must not be blank"
	case "min", "gte":
		if sized {
			return "Value is too short (minimum " + fe.Param() + ")"
		}
		return "Value is too small (minimum " + fe.Param() + ")"
	case "max", "lte":
		if sized {
			return "Value is too long (maximum " + fe.Param() + ")"
		}
		return "Value is too large (maximum " + fe.Param() + ")"
	case "url", "http_url", "url_or_empty":
		return "Value must be a valid URL"
	default:
		return "Invalid value"
	}
}
