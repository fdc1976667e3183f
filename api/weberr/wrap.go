package weberr

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Opt decorates an error with data read back by the transport layer.
type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

// WithResponse attaches the body and status rendered to the client.
func WithResponse(body *ErrorResponse, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// WithFields attaches structured log fields.
func WithFields(fields logrus.Fields) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Response returns the outermost response attached to err.
func Response(err error) (body *ErrorResponse, status int, ok bool) {
	var re *responseError
	if !errors.As(err, &re) {
		return nil, 0, false
	}
	return re.body, re.status, true
}

// Fields merges every field set found along the chain of err. Outer
// values win over inner ones.
func Fields(err error) (logrus.Fields, bool) {
	out := logrus.Fields{}
	for ; err != nil; err = errors.Unwrap(err) {
		fe, ok := err.(*fieldsError)
		if !ok {
			continue
		}
		for k, v := range fe.fields {
			if _, set := out[k]; !set {
				out[k] = v
			}
		}
	}
	return out, len(out) > 0
}

type responseError struct {
	error
	body   *ErrorResponse
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields logrus.Fields
}

func (e *fieldsError) Unwrap() error { return e.error }
