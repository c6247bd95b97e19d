package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPagination  = errors.New("invalid pagination")
	ErrInvalidField       = errors.New("invalid field")
	ErrInvalidOperator    = errors.New("invalid operator")
	ErrInvalidFilterValue = errors.New("invalid filter value")
	ErrUnknownResource    = errors.New("unknown resource")
)

// Error is returned by Compile and the builders. Kind is one of the
// ErrInvalid* sentinels, so callers can match with errors.Is.
type Error struct {
	Kind    error
	Field   string
	Allowed []string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func paginationError(key, raw string) *Error {
	return &Error{
		Kind:    ErrInvalidPagination,
		Field:   key,
		Message: fmt.Sprintf("Query %s must be a positive integer, got %q", key, raw),
	}
}

// fieldError names the operation ("sort", "ranged", "search", "filter") and
// lists every field the resource allows for it.
func fieldError(op, field string, allowed []string) *Error {
	return &Error{
		Kind:    ErrInvalidField,
		Field:   field,
		Allowed: append([]string(nil), allowed...),
		Message: fmt.Sprintf("Invalid key %q for %s. Available %s key: %s", field, op, op, strings.Join(allowed, ", ")),
	}
}

func operatorError(field, op string) *Error {
	return &Error{
		Kind:    ErrInvalidOperator,
		Field:   field,
		Allowed: opNames(),
		Message: fmt.Sprintf("Invalid operator %q for %s. Available operators: %s", op, field, strings.Join(opNames(), ", ")),
	}
}

// FilterValueError reports a value of field that cannot be compared with
// what the field holds; want describes the accepted form.
func FilterValueError(field, raw, want string) *Error {
	return &Error{
		Kind:    ErrInvalidFilterValue,
		Field:   field,
		Message: fmt.Sprintf("Invalid %s value %q, expected %s", field, raw, want),
	}
}
