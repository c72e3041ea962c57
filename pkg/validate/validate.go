package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// isbnRe accepts digits and hyphens, 10 to 17 chars.
var isbnRe = regexp.MustCompile(`^[0-9-]{10,17}$`)

type CustomValidator struct {
	v *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("isbn_code", func(fl validator.FieldLevel) bool {
		return isbnRe.MatchString(fl.Field().String())
	})
	return &CustomValidator{v: v}
}

// Validate satisfies echo.Validator. Constraint violations come back as
// *FieldsError with one message per offending field.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		fe := &FieldsError{Fields: make(map[string]string, len(ve))}
		for _, f := range ve {
			fe.Fields[strings.ToLower(f.Field())] = fieldMessage(f)
		}
		return fe
	}
	return nil
}

type FieldsError struct {
	Fields map[string]string
}

func (e *FieldsError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "isbn_code":
		return "isbn must contain only digits and hyphens (10-17 characters)"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
