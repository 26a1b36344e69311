package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MsgInvalid is used for failed tags that have no specific message.
const MsgInvalid = "Enter a valid value."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their form names so messages line up with inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// RegisterRule adds a string validation usable as a validate tag. It must be
// called during package initialization.
func RegisterRule(tag string, fn func(string) bool) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("forms: register %q: %v", tag, err))
	}
}

// Check runs the validate tags on form, a struct value. Failed tags become
// field messages; messages overrides the text for individual tags.
func Check(form interface{}, messages map[string]string) *ValidationError {
	ve := New()
	err := validate.Struct(form)
	if err == nil {
		return ve
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("form", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe, messages))
	}
	return ve
}

func message(fe validator.FieldError, messages map[string]string) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(fmt.Sprint(fe.Value())))
	case "email":
		return MsgInvalidEmail
	default:
		return MsgInvalid
	}
}
