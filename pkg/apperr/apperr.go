package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP boundary can map it to a status code
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindInvalidTransition
	KindNegativeStock
	KindInsufficientAvailable
	KindOverRelease
	KindDuplicate
	KindStateConflict
)

// Error is the single error type used across services.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newf(KindInvalidTransition, format, args...)
}

func NegativeStock(format string, args ...interface{}) *Error {
	return newf(KindNegativeStock, format, args...)
}

func InsufficientAvailable(format string, args ...interface{}) *Error {
	return newf(KindInsufficientAvailable, format, args...)
}

func OverRelease(format string, args ...interface{}) *Error {
	return newf(KindOverRelease, format, args...)
}

func Duplicate(format string, args ...interface{}) *Error {
	return newf(KindDuplicate, format, args...)
}

func StateConflict(format string, args ...interface{}) *Error {
	return newf(KindStateConflict, format, args...)
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the response status used by handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindNegativeStock, KindInsufficientAvailable,
		KindOverRelease, KindDuplicate, KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
