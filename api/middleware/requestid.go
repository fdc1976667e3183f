package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/random"
)

const (
	RequestIDHeader = "X-Request-Id"

	// requestIDLimit bounds ids forwarded by clients.
	requestIDLimit = 64
)

type ctxKey int

const requestIDKey ctxKey = 1

var requestSeq atomic.Int64

// RequestID tags the context with the id sent by the client, or with a
// process-unique one, and echoes it back in the response.
func RequestID() web.Middleware {
	prefix, err := random.StringSecure(10)
	if err != nil {
		prefix = "market"
	}

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id := r.Header.Get(RequestIDHeader)
			switch {
			case id == "":
				id = prefix + "-" + strconv.FormatInt(requestSeq.Add(1), 10)
			case len(id) > requestIDLimit:
				id = id[:requestIDLimit]
			}

			w.Header().Set(RequestIDHeader, id)
			ctx = context.WithValue(ctx, requestIDKey, id)

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
