package errors

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"
)

// Code classifies a failure for callers and for the HTTP layer.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeOutOfStock        Code = "OUT_OF_STOCK"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeUnavailable       Code = "UNAVAILABLE"
)

// Metadata describes how a code is presented over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

type codeFlag uint8

const (
	retryable codeFlag = 1 << iota
	withDetails
)

func describe(status int, public string, flags codeFlag) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		DetailsAllowed: flags&withDetails != 0,
	}
}

// CodeConflict is retryable: it signals a lost compare-and-swap and a fresh
// read is expected to succeed.
var codeTable = map[Code]Metadata{
	CodeValidation:        describe(http.StatusBadRequest, "validation failed", withDetails),
	CodeUnauthorized:      describe(http.StatusUnauthorized, "authentication required", 0),
	CodeForbidden:         describe(http.StatusForbidden, "access denied", 0),
	CodeNotFound:          describe(http.StatusNotFound, "resource not found", withDetails),
	CodeConflict:          describe(http.StatusConflict, "conflict detected", retryable),
	CodeOutOfStock:        describe(http.StatusConflict, "insufficient stock", withDetails),
	CodeInvalidTransition: describe(http.StatusUnprocessableEntity, "status transition not allowed", withDetails),
	CodeIdempotency:       describe(http.StatusConflict, "idempotency key reused", withDetails),
	CodeRateLimit:         describe(http.StatusTooManyRequests, "rate limit exceeded", 0),
	CodeInternal:          describe(http.StatusInternalServerError, "internal server error", retryable),
	CodeUnavailable:       describe(http.StatusServiceUnavailable, "service temporarily unavailable", retryable),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := codeTable[code]; ok {
		return meta
	}
	return codeTable[CodeInternal]
}

// Error is the typed error every service returns.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Unavailable wraps a storage or transport failure. Typed errors pass
// through so lower layers keep their classification.
func Unavailable(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case As(err) != nil:
		return As(err)
	case stdErrors.Is(err, context.DeadlineExceeded):
		message += ": timed out"
	}
	return Wrap(CodeUnavailable, err, message)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches client-visible details and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Retryable() bool {
	return MetadataFor(e.Code()).Retryable
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.code))
	b.WriteString(": ")
	b.WriteString(e.message)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
