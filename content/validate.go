package content

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate checks s against its `validate` struct tags. Failures come back as
// a *ValidationError whose messages are taken from each field's `msg` tag.
func Validate(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	root := reflect.TypeOf(s)
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(root, fe),
		})
	}
	return ve
}

// fieldMessage walks the struct namespace of fe (e.g. PostInput.Tags[0].Name)
// to find the `msg` tag of the failing field.
func fieldMessage(t reflect.Type, fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	var field reflect.StructField
	for _, part := range parts {
		if i := strings.IndexByte(part, '['); i >= 0 {
			part = part[:i]
		}
		t = elem(t)
		if t.Kind() != reflect.Struct {
			break
		}
		f, ok := t.FieldByName(part)
		if !ok {
			break
		}
		field = f
		t = f.Type
	}
	if msg := field.Tag.Get("msg"); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func elem(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t
}
