// Package validation wraps go-playground/validator and reports failures as
// domain.FieldErrors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// labels override the generated label for fields whose JSON name reads poorly.
var labels = map[string]string{
	"recipient_id":     "Recipient",
	"content":          "Message",
	"new_password":     "Password",
	"confirm_password": "Password confirmation",
	"first_name":       "First name",
	"last_name":        "Last name",
	"file_name":        "File name",
	"file_url":         "File URL",
}

// Validator checks structs tagged with `validate`.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom "role" rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return &Validator{v: v}
}

// Struct validates s. It returns nil or domain.FieldErrors.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(domain.FieldErrors, len(ve))
	for _, fe := range ve {
		key := fieldKey(fe)
		if _, exists := out[key]; !exists {
			out[key] = fieldMessage(fe)
		}
	}
	return out
}

// fieldKey is the JSON path of the failing field without the root struct name.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ")
}

// fieldMessage converts a single FieldError into a human-readable message.
func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email", "url":
		return name + " is invalid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "role":
		return name + " must be one of: " + rolesList()
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", name, fe.Tag())
	}
}

func rolesList() string {
	parts := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
