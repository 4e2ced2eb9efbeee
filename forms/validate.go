package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tripdesk/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("somefilled", someFilled)
	v.RegisterValidation("ratingtype", func(fl validator.FieldLevel) bool {
		return models.RatingType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("bannertype", func(fl validator.FieldLevel) bool {
		return models.BannerType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
		return models.BookingStatus(fl.Field().String()).Valid()
	})
	return v
}

type filler interface{ Filled() bool }

// someFilled wants at least one entry that is not blank: a non-whitespace
// string, or an element whose Filled method says so.
func someFilled(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < f.Len(); i++ {
		switch el := f.Index(i).Interface().(type) {
		case string:
			if strings.TrimSpace(el) != "" {
				return true
			}
		case filler:
			if el.Filled() {
				return true
			}
		}
	}
	return false
}

// requireImages reports field when the set would be empty after saving.
func (e *ValidationError) requireImages(field string, set ImageSet) {
	if set.Count() == 0 {
		e.add(field, "Select at least one image for "+field)
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed. It is reported through the
// same toast channel as transport errors.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) UserMessage() string {
	if len(e.Fields) == 0 {
		return ""
	}
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", e.Fields[0].Message, len(e.Fields)-1)
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// check runs the struct tags and returns a *ValidationError, or nil.
func check(v any) *ValidationError {
	out := &ValidationError{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		out.add("", err.Error())
		return out
	}
	for _, fe := range ves {
		out.add(fe.Field(), messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return name + " is required"
	case "somefilled":
		return "Add at least one " + name + " entry"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "url":
		return name + " must be a valid URL"
	case "email":
		return name + " must be a valid email"
	default:
		return name + " is invalid"
	}
}
