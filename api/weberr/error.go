package weberr

import (
	"errors"
	"net/http"
)

// Kinds are the machine-readable failure classes surfaced to clients.
const (
	KindNotFound        = "not_found"
	KindConflict        = "conflict"
	KindInvalid         = "invalid"
	KindForbidden       = "forbidden"
	KindUnauthenticated = "unauthenticated"
	KindUnavailable     = "unavailable"
	KindInternal        = "internal"
)

type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, kind string, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Kind: kind, Error: msg},
		status,
	))

	return Wrap(e, opts...)
}

// KindOf reports the kind attached to err, or KindInternal when err carries
// no response.
func KindOf(err error) string {
	body, _, ok := Response(err)
	if !ok || body == nil {
		return KindInternal
	}
	return body.Kind
}

// IsKind reports whether err was classified with kind.
func IsKind(err error, kind string) bool {
	return err != nil && KindOf(err) == kind
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		KindNotFound,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		KindUnauthenticated,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

// Forbidden, Conflict and Invalid expose the message of err to the client,
// so err must not carry internal detail.
func Forbidden(err error, opts ...Opt) error {
	return NewError(err, KindForbidden, err.Error(), http.StatusForbidden, opts...)
}

func Conflict(err error, opts ...Opt) error {
	return NewError(err, KindConflict, err.Error(), http.StatusConflict, opts...)
}

func Invalid(err error, opts ...Opt) error {
	return NewError(err, KindInvalid, err.Error(), http.StatusUnprocessableEntity, opts...)
}

func Unavailable(err error, opts ...Opt) error {
	return NewError(
		err,
		KindUnavailable,
		"an external service is unavailable, try again later",
		http.StatusServiceUnavailable,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		KindInternal,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		KindInvalid,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

// Is reports whether err is already classified, so callers can pass it
// through instead of wrapping it as internal.
func Is(err error) bool {
	var re *responseError
	return errors.As(err, &re)
}
