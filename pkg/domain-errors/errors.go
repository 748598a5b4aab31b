// Package domainerrors defines the coded error vocabulary shared by services
// and handlers. Services return *Error values for expected business outcomes;
// handlers map codes onto HTTP statuses without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a business outcome. Codes are part of the API contract and
// appear verbatim in the JSON error envelope.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"

	CodeDuplicateApplication  Code = "duplicate_application"
	CodeInvalidTransition     Code = "invalid_transition"
	CodeAlreadySubmitted      Code = "already_submitted"
	CodeIncompleteApplication Code = "incomplete_application"
	CodeProfileIncomplete     Code = "profile_incomplete"

	CodeUnsupportedFile    Code = "unsupported_file"
	CodeFileTooLarge       Code = "file_too_large"
	CodeStorageUnavailable Code = "storage_unavailable"

	CodeValidation   Code = "validation"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error. Details is optional structured context that
// handlers render into the envelope (e.g. missing profile fields).
type Error struct {
	Code    Code
	Message string
	Details map[string]any

	cause error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. The cause is
// reachable through errors.Is/As but never rendered to clients.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes two coded errors equal when their codes match, so tests can write
// errors.Is(err, dErrors.New(CodeNotFound, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy carrying the given details. The receiver is not
// mutated; shared error values stay safe to reuse.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// From extracts the coded error from an error chain. Uncoded errors come back
// as CodeInternal so handlers always have something renderable.
func From(err error) *Error {
	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}
	return &Error{Code: CodeInternal, Message: "internal error", cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var derr *Error
	return errors.As(err, &derr) && derr.Code == code
}

// ToHTTPStatus maps an error's code onto an HTTP status. Unknown or uncoded
// errors map to 500.
func ToHTTPStatus(err error) int {
	switch From(err).Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict, CodeDuplicateApplication, CodeInvalidTransition, CodeAlreadySubmitted:
		return http.StatusConflict
	case CodeIncompleteApplication, CodeProfileIncomplete:
		return http.StatusUnprocessableEntity
	case CodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeValidation, CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
