package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskManager/internal/access"
)

// fieldMessages are the client-facing messages per JSON field.
var fieldMessages = map[string]string{
	"name":        "Name is required",
	"email":       "Please include a valid email",
	"password":    "Please enter a password with 6 or more characters",
	"role":        "Role must be either superadmin or employee",
	"title":       "Title is required",
	"description": "Description is required",
	"category":    "Category must be one of work, personal, shopping, others",
	"status":      "Status must be one of pending, completed",
	"assignedTo":  "Assigned user is required",
	"dueDate":     "Due date is required",
}

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

// Validate returns a validation rejection naming the first bad field.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return access.Invalid("invalid request body")
	}
	field := verrs[0].Field()
	if msg, ok := fieldMessages[field]; ok {
		return access.Invalid("%s", msg)
	}
	return access.Invalid("%s is invalid", field)
}
