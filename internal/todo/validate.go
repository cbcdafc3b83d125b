package todo

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"example.com/todos-api/internal/stringsx"
)

// candidate fields are declared in check order; validator reports
// failures in declaration order and stops at the first failing tag of
// each field.
type candidate struct {
	Title string `validate:"notblank,max=200"`
	Notes string `validate:"max=1000"`
	Due   Date   `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return !stringsx.IsBlank(fl.Field().String())
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			return d.String()
		}
		return nil
	}, Date{})
	return v
}

// Validate checks the stored fields of t and returns a *ValidationError
// listing every violated constraint, or nil.
func Validate(t Todo) error {
	err := validate.Struct(candidate{Title: t.Title, Notes: t.Notes, Due: t.Due})
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return &ValidationError{Messages: msgs}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return fe.Field() + " can't be blank"
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
