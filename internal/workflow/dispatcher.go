// Package workflow runs cadastro operations as process instances.
//
// A process instance moves through three states:
//
//	AWAITING_OPERATION -> DISPATCHED(op) -> DONE(outcome)
//
// The dispatcher validates and normalizes the requested operation, then a
// closed switch routes the typed Request to one of four handlers. Each
// handler calls the record store and returns a typed Result. There are no
// cycles, retries or timeouts inside an instance.
package workflow

import (
	"errors"
	"net/http"
	"strings"
)

// Operation is the unit of dispatch.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpRead   Operation = "READ"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Operations lists the accepted operations in display order.
var Operations = []Operation{OpCreate, OpRead, OpUpdate, OpDelete}

// ErrInvalidOperation is returned by ParseOperation for a nil, blank or
// unknown operation.
var ErrInvalidOperation = errors.New("invalid operation: must be one of CREATE, READ, UPDATE, DELETE")

// ParseOperation trims and upper-cases raw and checks it against the
// fixed operation set.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(raw)))
	switch op {
	case OpCreate, OpRead, OpUpdate, OpDelete:
		return op, nil
	default:
		return "", ErrInvalidOperation
	}
}

// dispatch is the first task of every instance. On failure it returns
// the terminal 400 Result and ok=false.
func dispatch(raw string) (Operation, Result, bool) {
	op, err := ParseOperation(raw)
	if err != nil {
		return "", Result{StatusCode: http.StatusBadRequest, Message: err.Error()}, false
	}
	return op, Result{}, true
}
