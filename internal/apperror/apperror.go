// Package apperror defines the application error taxonomy and its mapping
// to HTTP status codes. Every controller translates errors through this
// package so that a given failure kind always produces the same status and
// envelope.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind categorizes an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindBadID
	KindUnauthenticated
	KindForbidden
	KindHasDependents
	KindUnavailable
	KindAlreadyBorrowed
	KindNoActiveLoan
	KindUnsupportedType
	KindTooLarge
	KindStorageIO
)

// Error is the application error type. Fields carries the offending field
// names for validation and duplicate-key errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindDuplicate, KindBadID, KindHasDependents,
		KindUnsupportedType, KindTooLarge, KindUnavailable, KindNoActiveLoan:
		return http.StatusBadRequest
	case KindAlreadyBorrowed:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// From converts any error into an *Error. Unknown errors become internal
// errors so their details are never leaked to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewValidation creates a validation error listing every violated field.
func NewValidation(fields []string, messages []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: strings.Join(messages, ", "),
		Fields:  fields,
	}
}

// NewDuplicate creates a duplicate-key error naming the unique field.
func NewDuplicate(field string) *Error {
	msg := "duplicate field value entered"
	switch field {
	case "email":
		msg = "email already exists"
	case "membership_id":
		msg = "membership ID already exists"
	case "isbn":
		msg = "ISBN already exists"
	case "name":
		msg = "name already exists"
	}
	return &Error{Kind: KindDuplicate, Message: msg, Fields: []string{field}}
}

// NewNotFound creates a not-found error for the named resource.
func NewNotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// NewBadID creates an error for a malformed identifier.
func NewBadID(param string) *Error {
	return &Error{Kind: KindBadID, Message: "invalid " + param}
}

func NewUnauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewHasDependents blocks a destructive delete while dependents exist.
func NewHasDependents(resource string, count int64) *Error {
	return &Error{
		Kind: KindHasDependents,
		Message: fmt.Sprintf(
			"cannot delete %s with %d associated books, reassign or delete the books first",
			resource, count),
	}
}
