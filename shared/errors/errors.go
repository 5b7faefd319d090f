package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Match them with errors.Is, the concrete value returned to
// callers is always *ErrorWithStatusCode.
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrToken          = errors.New("token rejected")
	ErrNotFound       = errors.New("not found")
	ErrDelivery       = errors.New("delivery failed")
	ErrStorage        = errors.New("storage failure")
)

// Conflicts reported by the account store.
var (
	ErrDuplicateEmail    = &ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusBadRequest, Kind: ErrConflict}
	ErrDuplicateUsername = &ErrorWithStatusCode{Message: "Username already taken", StatusCode: http.StatusBadRequest, Kind: ErrConflict}
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Kind
}

func Validation(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest, Kind: ErrValidation}
}

func Conflict(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest, Kind: ErrConflict}
}

func Authentication(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnauthorized, Kind: ErrAuthentication}
}

func Authorization(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusForbidden, Kind: ErrAuthorization}
}

func Token(msg string, statusCode int) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: statusCode, Kind: ErrToken}
}

func NotFound(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusNotFound, Kind: ErrNotFound}
}

func Delivery(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusInternalServerError, Kind: ErrDelivery}
}

// Storage hides the cause, it must be logged by the caller.
func Storage() error {
	return &ErrorWithStatusCode{Message: "Internal server error", StatusCode: http.StatusInternalServerError, Kind: ErrStorage}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Internal is an unclassified server failure, the cause must be logged by the caller.
func Internal() error {
	return &ErrorWithStatusCode{Message: "Internal server error", StatusCode: http.StatusInternalServerError}
}
