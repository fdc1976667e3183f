package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

const selectCoupons = `
	SELECT coupon_id, code, discount_percent, valid_from, valid_until, max_uses, current_uses, created_at
	FROM coupons`

func Create(ctx context.Context, db sqlx.ExtContext, c Coupon) error {
	const q = `
	INSERT INTO coupons
		(coupon_id, code, discount_percent, valid_from, valid_until, max_uses, current_uses, created_at)
	VALUES
		(:coupon_id, :code, :discount_percent, :valid_from, :valid_until, :max_uses, :current_uses, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting coupon: %w", err)
	}
	return nil
}

func FetchByCode(ctx context.Context, db sqlx.ExtContext, code string) (Coupon, error) {
	q := selectCoupons + ` WHERE code = :code`

	in := struct {
		Code string `db:"code"`
	}{code}

	var c Coupon
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Coupon{}, fmt.Errorf("selecting coupon[%s]: %w", code, err)
	}
	return c, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Coupon, error) {
	q := selectCoupons + ` ORDER BY created_at DESC`

	var cs []Coupon
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &cs); err != nil {
		return nil, fmt.Errorf("selecting coupons: %w", err)
	}
	return cs, nil
}

// IncrementUses takes one use of the coupon if it is still valid at now.
// The check and the increment are a single statement, so concurrent
// checkouts cannot exceed max_uses; a lost race yields ErrDBNotFound.
func IncrementUses(ctx context.Context, db sqlx.ExtContext, code string, now time.Time) (Coupon, error) {
	const q = `
	UPDATE coupons SET
		current_uses = current_uses + 1
	WHERE code = :code
		AND valid_from <= :now AND valid_until >= :now
		AND (max_uses IS NULL OR current_uses < max_uses)
	RETURNING coupon_id, code, discount_percent, valid_from, valid_until, max_uses, current_uses, created_at`

	in := struct {
		Code string    `db:"code"`
		Now  time.Time `db:"now"`
	}{code, now}

	var c Coupon
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Coupon{}, fmt.Errorf("consuming coupon[%s]: %w", code, err)
	}
	return c, nil
}
