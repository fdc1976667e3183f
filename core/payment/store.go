package payment

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

const selectPayments = `
	SELECT payment_id, correlation_id, user_id, course_id, amount, currency, status, method,
		coupon_code, created_at, updated_at
	FROM payments`

func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments (payment_id, correlation_id, user_id, course_id, amount, currency, status,
		method, coupon_code, created_at, updated_at)
	VALUES (:payment_id, :correlation_id, :user_id, :course_id, :amount, :currency, :status,
		:method, :coupon_code, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

// FetchByCorrelation returns the rows of correlationID owned by userID.
// Rows of other users are never returned.
func FetchByCorrelation(ctx context.Context, db sqlx.ExtContext, correlationID string, userID string) ([]Payment, error) {
	q := selectPayments + `
	WHERE correlation_id = :correlation_id AND user_id = :user_id
	ORDER BY created_at, payment_id`

	in := struct {
		CorrelationID string `db:"correlation_id"`
		UserID        string `db:"user_id"`
	}{correlationID, userID}

	var ps []Payment
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, fmt.Errorf("selecting payment[%s]: %w", correlationID, err)
	}
	return ps, nil
}

// LockByCorrelation locks every row of correlationID until the surrounding
// transaction ends.
func LockByCorrelation(ctx context.Context, tx sqlx.ExtContext, correlationID string) ([]Payment, error) {
	q := selectPayments + `
	WHERE correlation_id = :correlation_id
	ORDER BY payment_id
	FOR UPDATE`

	in := struct {
		CorrelationID string `db:"correlation_id"`
	}{correlationID}

	var ps []Payment
	if err := database.NamedQuerySlice(ctx, tx, q, in, &ps); err != nil {
		return nil, fmt.Errorf("locking payment[%s]: %w", correlationID, err)
	}
	return ps, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Payment, error) {
	q := selectPayments + `
	WHERE user_id = :user_id
	ORDER BY created_at DESC, payment_id`

	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	var ps []Payment
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, fmt.Errorf("selecting payments of user[%s]: %w", userID, err)
	}
	return ps, nil
}

func FetchLatest(ctx context.Context, db sqlx.ExtContext, limit int) ([]Payment, error) {
	q := selectPayments + `
	ORDER BY created_at DESC
	LIMIT :limit`

	in := struct {
		Limit int `db:"limit"`
	}{limit}

	var ps []Payment
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, fmt.Errorf("selecting latest payments: %w", err)
	}
	return ps, nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	const q = `
	UPDATE payments SET
		status = :status,
		updated_at = :updated_at
	WHERE correlation_id = :correlation_id`

	if err := database.NamedExecAffected(ctx, db, q, up); err != nil {
		return fmt.Errorf("updating status of payment[%s]: %w", up.CorrelationID, err)
	}
	return nil
}
