package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse failure class a caller can branch on.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindProviderError       Kind = "PROVIDER_ERROR"
	KindParseFailure        Kind = "PARSE_FAILURE"
	KindConflict            Kind = "CONFLICT"
	KindInternal            Kind = "INTERNAL"
)

type Error struct {
	Status int
	Code   string
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Kind: kindForStatus(status), Err: err}
}

func Validation(code string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Kind: KindValidation, Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Kind: KindNotFound, Err: err}
}

func ProviderUnavailable(err error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: "provider_unavailable", Kind: KindProviderUnavailable, Err: err}
}

// ProviderError covers failed and timed-out model calls; code distinguishes the two.
func ProviderError(code string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Code: code, Kind: KindProviderError, Err: err}
}

func ParseFailure(err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: "parse_failure", Kind: KindParseFailure, Err: err}
}

func Conflict(code string, err error) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Kind: KindConflict, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != "" {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindProviderUnavailable
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return KindProviderError
	case http.StatusUnprocessableEntity:
		return KindParseFailure
	default:
		return KindInternal
	}
}
