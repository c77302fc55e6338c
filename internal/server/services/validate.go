package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of in and turns the first failure into
// a common.ErrorValidation with a readable message.
func validateStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return common.NewError(common.ErrorValidation, "Please add %s %s", article(fe.Field()), fe.Field())
	case "email":
		return common.NewError(common.ErrorValidation, "Please add a valid email")
	case "min":
		return common.NewError(common.ErrorValidation, "%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return common.NewError(common.ErrorValidation, "%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return common.NewError(common.ErrorValidation, "%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return common.NewError(common.ErrorValidation, "Invalid %s", fe.Field())
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiouAEIOU", rune(word[0])) {
		return "an"
	}
	return "a"
}
