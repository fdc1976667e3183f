package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

var ErrUnusable = errors.New("coupon expired or usage limit reached")

// Validate looks the coupon up and checks it at now without using it.
func Validate(ctx context.Context, db sqlx.ExtContext, code string, now time.Time) (Coupon, error) {
	code = Normalize(code)

	c, err := FetchByCode(ctx, db, code)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Coupon{}, weberr.NotFound(err)
		}
		return Coupon{}, fmt.Errorf("fetching coupon[%s]: %w", code, err)
	}

	if !c.Valid(now) {
		return Coupon{}, weberr.Invalid(ErrUnusable)
	}
	return c, nil
}

// Consume validates the coupon and takes one use of it. It is meant to run
// inside the transaction that records what the coupon paid for.
func Consume(ctx context.Context, tx sqlx.ExtContext, code string, now time.Time) (Coupon, error) {
	c, err := Validate(ctx, tx, code, now)
	if err != nil {
		return Coupon{}, err
	}

	c, err = IncrementUses(ctx, tx, c.Code, now)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Coupon{}, weberr.Invalid(ErrUnusable)
		}
		return Coupon{}, err
	}
	return c, nil
}
