package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks the validate tags on s and returns a map of json field
// name to Vietnamese message. The map is nil when s is valid.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s là bắt buộc", fe.Field())
	case "gte", "min":
		return fmt.Sprintf("%s phải lớn hơn hoặc bằng %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s phải nhỏ hơn hoặc bằng %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s không đúng định dạng email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s phải là một trong: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s không hợp lệ", fe.Field())
}
