package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors logs the full error chain and renders only the response body
// attached to it. Errors without a response become a generic 500.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields, _ := weberr.Fields(err)
			fields["req_id"] = ContextRequestID(ctx)
			fields["kind"] = weberr.KindOf(err)
			fields["message"] = err

			body, code, ok := weberr.Response(err)
			if !ok {
				body = &weberr.ErrorResponse{
					Kind:  weberr.KindInternal,
					Error: http.StatusText(http.StatusInternalServerError),
				}
				code = http.StatusInternalServerError
			}

			entry := log.WithFields(fields)
			if code >= http.StatusInternalServerError {
				entry.Error("ERROR")
			} else {
				entry.Warn("request failed")
			}

			return web.Respond(ctx, w, body, code)
		}
		return h
	}
	return m
}
