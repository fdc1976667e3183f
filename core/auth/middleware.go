package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/claims"
)

// Authenticate reads the bearer token of the request and puts the verified
// caller in the context.
func Authenticate(t *Tokens) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			s, err := bearer(r)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			clm, err := t.Verify(s)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Authorize lets through callers holding one of roles. It must run after
// Authenticate.
func Authorize(roles ...string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			for _, role := range roles {
				if clm.Role == role {
					return handler(ctx, w, r)
				}
			}
			return weberr.Forbidden(fmt.Errorf("role %s is not allowed here", clm.Role))
		}
		return h
	}
	return m
}

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("missing authorization header")
	}

	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", errors.New("authorization header is not a bearer token")
	}
	return strings.TrimSpace(tok), nil
}
