package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"seniors/services/post/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validatePostInput reports every failing field, in field order, as one ValidationError.
func validatePostInput(in entity.PostInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return entity.NewValidationError(messages...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("at most %s files may be attached", fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func validatePageRequest(page, size int) error {
	var messages []string
	if page < 0 {
		messages = append(messages, "page must not be negative")
	}
	if size < 1 || size > maxPageSize {
		messages = append(messages, fmt.Sprintf("size must be between 1 and %d", maxPageSize))
	}
	if len(messages) > 0 {
		return entity.NewValidationError(messages...)
	}
	return nil
}
