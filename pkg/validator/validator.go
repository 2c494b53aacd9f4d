// Package validator valida DTOs de entrada con tags de go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Reportar el nombre JSON del campo, que es el que ve el cliente.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate ejecuta la validación por tags del struct.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors convierte validator.ValidationErrors en campo → mensaje legible.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, e := range ve {
		out[e.Field()] = formatFieldError(e)
	}
	return out
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obligatorio"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", e.Param())
	case "uuid", "uuid4":
		return "debe ser un UUID válido"
	case "min":
		return fmt.Sprintf("mínimo %s", e.Param())
	case "max":
		return fmt.Sprintf("máximo %s", e.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", e.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual que %s", e.Param())
	case "datetime":
		return fmt.Sprintf("formato de fecha esperado %s", e.Param())
	default:
		return fmt.Sprintf("validación '%s' fallida", e.Tag())
	}
}
