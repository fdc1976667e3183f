package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotCompleted = errors.New("the course must be completed before a certificate is issued")
	ErrUnknownCode  = errors.New("no certificate with this code")
)

const issueAttempts = 3

// Issue returns the certificate of userID for courseID, creating it when
// the user completed the course. created is false when the certificate
// already existed.
func Issue(ctx context.Context, db sqlx.ExtContext, baseURL string, userID string, courseID string) (c Certificate, created bool, err error) {
	e, err := enrollment.Fetch(ctx, db, userID, courseID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Certificate{}, false, weberr.Invalid(ErrNotCompleted)
		}
		return Certificate{}, false, err
	}

	if !e.Completed {
		return Certificate{}, false, weberr.Invalid(ErrNotCompleted)
	}

	for i := 0; i < issueAttempts; i++ {
		c, err = Fetch(ctx, db, userID, courseID)
		if err == nil {
			return c, false, nil
		}
		if !errors.Is(err, database.ErrDBNotFound) {
			return Certificate{}, false, err
		}

		code, u, err := newCode(baseURL)
		if err != nil {
			return Certificate{}, false, err
		}

		nc := Certificate{
			ID:       validate.GenerateID(),
			UserID:   userID,
			CourseID: courseID,
			Code:     code,
			URL:      u,
			IssuedAt: time.Now().UTC(),
		}

		err = Create(ctx, db, nc)
		switch {
		case err == nil:
			c, err = Fetch(ctx, db, userID, courseID)
			if err != nil {
				return Certificate{}, false, err
			}
			return c, true, nil

		case errors.Is(err, database.ErrDBDuplicatedEntry):
			// Lost a race for the same pair, or drew a used code.
			continue

		default:
			return Certificate{}, false, err
		}
	}

	return Certificate{}, false, fmt.Errorf("issuing certificate of user[%s] for course[%s]: giving up after %d attempts", userID, courseID, issueAttempts)
}

// Verify is the public lookup of a certificate by its code.
func Verify(ctx context.Context, db sqlx.ExtContext, code string) (Certificate, error) {
	c, err := FetchByCode(ctx, db, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Certificate{}, weberr.NotFound(ErrUnknownCode)
		}
		return Certificate{}, err
	}
	return c, nil
}
