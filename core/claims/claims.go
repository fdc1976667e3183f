package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleUser       = "USER"
)

// Claims is the verified identity of the caller. Handlers read it once and
// pass the user id on explicitly.
type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// CanTeach reports whether the caller may author course content.
func (c Claims) CanTeach() bool { return c.Role == RoleAdmin || c.Role == RoleInstructor }

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.IsAdmin()
}
