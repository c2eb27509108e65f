// Package validation wraps go-playground/validator with the rules the
// request bodies need.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mls-workflow/cadastro-api/internal/types"
)

// Tag reported for an update body without any field.
const TagAtLeastOne = "atleastone"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("email") instead of Go names ("Email").
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

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(types.UpdateRequest)
		if req.Empty() {
			sl.ReportError(req.Payload, "payload", "Payload", TagAtLeastOne, "")
		}
	}, types.UpdateRequest{})

	return v
}

// Struct validates s. The returned error, if not nil, is a
// validator.ValidationErrors holding every failed field.
func Struct(s any) error {
	return validate.Struct(s)
}

// Process checks the conditional rules of a legacy process request:
// id is required for READ/UPDATE/DELETE, payload for CREATE/UPDATE, and
// a present payload must hold valid fields. A CREATE payload must also
// carry every field. Unknown operations are left
// to the dispatcher. The result maps field names to messages and is
// empty when the request is acceptable.
func Process(req types.ProcessRequest) map[string]string {
	errs := make(map[string]string)
	op := strings.ToUpper(strings.TrimSpace(req.Operation))

	switch op {
	case "READ", "UPDATE", "DELETE":
		if req.ID == nil {
			errs["id"] = "id is required for " + op + " operations"
		}
	}
	switch op {
	case "CREATE", "UPDATE":
		if req.Payload == nil {
			errs["payload"] = "payload is required for " + op + " operations"
		}
	}

	if req.Payload == nil {
		return errs
	}
	if err := Struct(req.Payload); err != nil {
		for field, msg := range Messages(err) {
			errs["payload."+field] = msg
		}
	}
	if op == "CREATE" {
		required := map[string]bool{
			"name":  req.Payload.Name == nil,
			"email": req.Payload.Email == nil,
			"age":   req.Payload.Age == nil,
		}
		for field, missing := range required {
			if missing {
				errs["payload."+field] = "field " + field + " is required"
			}
		}
	}
	return errs
}

// Messages converts a validation error into a field -> message map.
// Errors that are not validator.ValidationErrors are reported under
// the empty key.
func Messages(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}

	for _, e := range verrs {
		field := e.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field " + e.Field() + " is required"
	case "notblank":
		return "field " + e.Field() + " must not be blank"
	case "email":
		return "field " + e.Field() + " must be a valid email address"
	case "min":
		return "field " + e.Field() + " must not be negative"
	case TagAtLeastOne:
		return "at least one of name, email, age must be provided"
	default:
		return "field " + e.Field() + " is invalid"
	}
}
