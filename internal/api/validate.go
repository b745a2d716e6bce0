package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"trading-journal/internal/streak"
)

const civilDateTag = "civildate"

// NewValidator returns a validator that reports JSON field names and knows
// the civildate tag.
func NewValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names rather than Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(civilDateTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, ok = streak.NormalizeDate(s)
		return ok
	})
	return v
}

// FieldErrors flattens validator errors into field -> message.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fieldPath(fe)] = describe(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case civilDateTag:
		return "must be a date (YYYY-MM-DD)"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
