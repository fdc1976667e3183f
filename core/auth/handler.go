package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/user"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

var ErrBadCredentials = errors.New("email or password is wrong")

type session struct {
	Token
	User user.User `json:"user"`
}

func HandleSignup(db *sqlx.DB, tokens *Tokens) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var us user.UserSignup
		if err := web.Decode(w, r, &us); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(us); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		hash, err := user.HashPassword(us.Password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		u := user.User{
			ID:           validate.GenerateID(),
			Name:         us.Name,
			Email:        strings.ToLower(us.Email),
			Role:         claims.RoleUser,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.Conflict(errors.New("email already in use"))
			}
			return fmt.Errorf("creating user: %w", err)
		}

		tok, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, session{tok, u}, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, tokens *Tokens) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ul user.UserLogin
		if err := web.Decode(w, r, &ul); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ul); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		u, err := user.FetchByEmail(ctx, db, strings.ToLower(ul.Email))
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotAuthorized(ErrBadCredentials)
			}
			return fmt.Errorf("fetching user: %w", err)
		}

		if !u.CheckPassword(ul.Password) {
			return weberr.NotAuthorized(ErrBadCredentials)
		}

		tok, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, session{tok, u}, http.StatusOK)
	}
}
