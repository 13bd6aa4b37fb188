package internal

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("survey_template", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "single-column", "page-by-page", "minimalist", "sectional":
			return true
		}
		return false
	})

	_ = v.RegisterValidation("theme_color", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return hexColorPattern.MatchString(value)
	})

	return v
}

func ValidateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err != nil {
		return err
	}
	return nil
}
