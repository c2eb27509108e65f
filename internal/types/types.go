// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and the workflow engine can all import types
// without depending on each other.
package types

import (
	"fmt"
	"strings"
)

// Record is one row of the cadastro table.
//
// ID is zero until the record has been persisted; the store assigns it.
type Record struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Payload is record-shaped input where every field may be omitted.
// A nil field means "not provided", which is different from an empty value.
type Payload struct {
	Name  *string `json:"name,omitempty"  validate:"omitnil,notblank"`
	Email *string `json:"email,omitempty" validate:"omitnil,notblank,email"`
	Age   *int    `json:"age,omitempty"   validate:"omitnil,min=0"`
}

// Empty reports whether no usable field was provided. Blank strings do
// not count as provided.
func (p Payload) Empty() bool {
	return (p.Name == nil || strings.TrimSpace(*p.Name) == "") &&
		(p.Email == nil || strings.TrimSpace(*p.Email) == "") &&
		p.Age == nil
}

// Record converts a complete payload into a Record. It fails when any
// field is missing, naming every missing field.
func (p Payload) Record() (Record, error) {
	var missing []string
	if p.Name == nil {
		missing = append(missing, "name")
	}
	if p.Email == nil {
		missing = append(missing, "email")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if len(missing) > 0 {
		return Record{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	return Record{Name: *p.Name, Email: *p.Email, Age: *p.Age}, nil
}

// MergeInto returns r with every provided field of p applied.
// The ID is never touched.
func (p Payload) MergeInto(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Age != nil {
		r.Age = *p.Age
	}
	return r
}

// CreateRequest is the body of POST /api/v1/cadastro.
//
// Age is a pointer so that an explicit 0 passes "required" while a
// missing age does not.
type CreateRequest struct {
	Name  string `json:"name"  validate:"required,notblank"`
	Email string `json:"email" validate:"required,notblank,email"`
	Age   *int   `json:"age"   validate:"required,min=0"`
}

// Payload converts the request into the workflow payload.
func (c CreateRequest) Payload() *Payload {
	return &Payload{Name: &c.Name, Email: &c.Email, Age: c.Age}
}

// UpdateRequest is the body of PUT /api/v1/cadastro/{id}. At least one
// field must be present; the rule is registered in package validation.
type UpdateRequest struct {
	Payload
}

// ProcessRequest is the body of the legacy POST /api/cadastro/process
// endpoint.
type ProcessRequest struct {
	Operation string   `json:"operation"`
	ID        *int64   `json:"id,omitempty"`
	Payload   *Payload `json:"payload,omitempty"`
}

// ProcessResponse is returned with 202 Accepted by the legacy endpoint.
type ProcessResponse struct {
	ProcessInstanceID string `json:"processInstanceId"`
	BusinessKey       string `json:"businessKey"`
}
