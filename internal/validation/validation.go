// Package validation checks and normalizes request input before it reaches
// the services.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"devconnector/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v using its `validate` tags. Failures are returned as a
// VALIDATION_ERROR AppError whose fields carry the `msg` tag of each failing
// field, in declaration order.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Error()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if custom := sf.Tag.Get("msg"); custom != "" {
				msg = custom
			}
		}
		fields = append(fields, models.FieldError{Param: fe.Field(), Msg: msg})
	}
	return models.NewFieldValidationError(fields)
}
