package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/cart"
	"github.com/irsalhamdi/course-market/core/coupon"
	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/random"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

var ErrPaymentMissing = errors.New("payment not found")

// freePrefix marks payment ids settled locally because nothing was owed.
const freePrefix = "FREE-"

// Checkout charges the user's cart through the gateway serving in.Method.
// The gateway is called first, bounded by cfg.Timeout; only when it
// accepts the charge are the coupon use and one pending payment per cart
// line written, all in one transaction. The cart is left untouched.
// A charge discounted to zero never reaches the gateway: its payments are
// recorded as completed and fulfilled right away.
func Checkout(ctx context.Context, db *sqlx.DB, gws *Router, cfg config.Gateway, userID string, in CheckoutNew) (Receipt, error) {
	if !in.Method.Valid() {
		return Receipt{}, weberr.Invalid(ErrUnknownMethod)
	}

	gw, err := gws.For(in.Method)
	if err != nil {
		return Receipt{}, weberr.Unavailable(err)
	}

	c, err := cart.GetOrCreate(ctx, db, userID)
	if err != nil {
		return Receipt{}, fmt.Errorf("fetching cart of user[%s]: %w", userID, err)
	}

	if len(c.Items) == 0 {
		return Receipt{}, weberr.Invalid(ErrEmptyCart)
	}

	if err := unowned(ctx, db, userID, c.Items); err != nil {
		return Receipt{}, err
	}

	now := time.Now().UTC()

	var cp *coupon.Coupon
	if in.CouponCode != "" {
		v, err := coupon.Validate(ctx, db, in.CouponCode, now)
		if err != nil {
			return Receipt{}, err
		}
		cp = &v
	}

	ch := charge(c.Items, in.Method, cfg.Currency, cp)

	status := Pending
	var started Initiation
	if ch.Total().IsZero() {
		status = Completed
		if started.CorrelationID, err = random.Code(freePrefix, 16); err != nil {
			return Receipt{}, fmt.Errorf("generating payment id: %w", err)
		}
	} else {
		if started, err = initiate(ctx, gw, ch, cfg.Timeout); err != nil {
			return Receipt{}, err
		}
	}

	ps, err := prepare(ctx, db, userID, started.CorrelationID, ch, cp, status, now)
	if err != nil {
		return Receipt{}, fmt.Errorf("recording payment[%s] for user[%s]: %w", started.CorrelationID, userID, err)
	}

	r := Receipt{
		PaymentID:    started.CorrelationID,
		Method:       in.Method,
		Amount:       ch.Total(),
		Currency:     ch.Currency,
		Presentation: started.Presentation,
		Payments:     ps,
	}
	return r, nil
}

// charge builds the gateway request from the cart lines, discounting each
// line when a coupon is given.
func charge(items []cart.Item, m Method, currency string, cp *coupon.Coupon) Charge {
	ch := Charge{
		Method:   m,
		Currency: currency,
		Lines:    make([]Line, 0, len(items)),
	}

	for _, it := range items {
		amount := it.Price
		if cp != nil {
			amount = cp.Apply(amount)
		}
		ch.Lines = append(ch.Lines, Line{CourseID: it.CourseID, Title: it.Title, Amount: amount})
	}
	return ch
}

func initiate(ctx context.Context, gw Gateway, ch Charge, timeout time.Duration) (Initiation, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started, err := gw.Initiate(ctx, ch)
	if err != nil {
		return Initiation{}, weberr.Unavailable(fmt.Errorf("initiating %s payment: %w", ch.Method, err))
	}
	if started.CorrelationID == "" {
		return Initiation{}, weberr.Unavailable(errors.New("gateway returned no payment id"))
	}
	return started, nil
}

// unowned fails with a conflict when the user is already enrolled in a
// course of the cart, as happens after a direct or admin enrollment.
func unowned(ctx context.Context, db sqlx.ExtContext, userID string, items []cart.Item) error {
	for _, it := range items {
		_, err := enrollment.Fetch(ctx, db, userID, it.CourseID)
		switch {
		case err == nil:
			return weberr.Conflict(fmt.Errorf("%w: %s", enrollment.ErrAlreadyEnrolled, it.Title))
		case !errors.Is(err, database.ErrDBNotFound):
			return err
		}
	}
	return nil
}

func prepare(ctx context.Context, db *sqlx.DB, userID string, correlationID string, ch Charge, cp *coupon.Coupon, status Status, now time.Time) ([]Payment, error) {
	ps := make([]Payment, 0, len(ch.Lines))

	err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		var code *string
		if cp != nil {
			used, err := coupon.Consume(ctx, tx, cp.Code, now)
			if err != nil {
				return err
			}
			code = &used.Code
		}

		for _, l := range ch.Lines {
			p := Payment{
				ID:            validate.GenerateID(),
				CorrelationID: correlationID,
				UserID:        userID,
				CourseID:      l.CourseID,
				Amount:        l.Amount,
				Currency:      ch.Currency,
				Status:        status,
				Method:        ch.Method,
				CouponCode:    code,
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			if err := Create(ctx, tx, p); err != nil {
				return err
			}
			ps = append(ps, p)
		}

		if status == Completed {
			return fulfill(ctx, tx, ps, now)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return ps, nil
}

// SetStatus moves every row of correlationID to status. Repeating the
// current status changes nothing. When the rows complete, each paid course
// is enrolled, unless it already is, and dropped from the buyer's cart in
// the same transaction.
func SetStatus(ctx context.Context, db *sqlx.DB, correlationID string, status Status) (Details, error) {
	if !status.Valid() {
		return Details{}, weberr.Invalid(fmt.Errorf("unknown payment status %q", status))
	}

	var d Details

	err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		ps, err := LockByCorrelation(ctx, tx, correlationID)
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			return weberr.NotFound(ErrPaymentMissing)
		}

		changed, err := ps[0].Status.Transition(status)
		if err != nil {
			return weberr.Invalid(fmt.Errorf("%s to %s: %w", ps[0].Status, status, err))
		}

		if changed {
			now := time.Now().UTC()
			if err := UpdateStatus(ctx, tx, StatusUp{CorrelationID: correlationID, Status: status, UpdatedAt: now}); err != nil {
				return err
			}
			for i := range ps {
				ps[i].Status = status
				ps[i].UpdatedAt = now
			}

			if status == Completed {
				if err := fulfill(ctx, tx, ps, now); err != nil {
					return err
				}
			}
		}

		d = newDetails(ps)
		return nil
	})

	if err != nil {
		return Details{}, fmt.Errorf("setting status of payment[%s] to %s: %w", correlationID, status, err)
	}
	return d, nil
}

func fulfill(ctx context.Context, tx sqlx.ExtContext, ps []Payment, now time.Time) error {
	courseIDs := make([]string, 0, len(ps))
	for _, p := range ps {
		e := enrollment.Enrollment{
			ID:        validate.GenerateID(),
			UserID:    p.UserID,
			CourseID:  p.CourseID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := enrollment.CreateIfAbsent(ctx, tx, e); err != nil {
			return err
		}
		courseIDs = append(courseIDs, p.CourseID)
	}

	if err := cart.DeleteCourses(ctx, tx, ps[0].UserID, courseIDs); err != nil {
		return fmt.Errorf("flushing cart: %w", err)
	}
	return nil
}

// History lists every payment of the user, newest first.
func History(ctx context.Context, db sqlx.ExtContext, userID string) ([]Payment, error) {
	return FetchByUser(ctx, db, userID)
}

// Lookup returns the payment correlationID of userID. Payments of other
// users are reported as missing.
func Lookup(ctx context.Context, db sqlx.ExtContext, correlationID string, userID string) (Details, error) {
	ps, err := FetchByCorrelation(ctx, db, correlationID, userID)
	if err != nil {
		return Details{}, err
	}
	if len(ps) == 0 {
		return Details{}, weberr.NotFound(ErrPaymentMissing)
	}
	return newDetails(ps), nil
}

// Sync asks the gateway for the status of a payment of userID and applies
// it when it is a move the payment can make. Gateways that cannot tell
// more than pending leave the payment as it is.
func Sync(ctx context.Context, db *sqlx.DB, gws *Router, cfg config.Gateway, correlationID string, userID string) (Details, error) {
	d, err := Lookup(ctx, db, correlationID, userID)
	if err != nil {
		return Details{}, err
	}

	gw, err := gws.For(d.Method)
	if err != nil {
		return Details{}, weberr.Unavailable(err)
	}

	gctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	remote, err := gw.StatusOf(gctx, correlationID)
	if err != nil {
		return Details{}, weberr.Unavailable(fmt.Errorf("fetching status of payment[%s]: %w", correlationID, err))
	}

	if changed, err := d.Status.Transition(remote); err != nil || !changed {
		return d, nil
	}

	return SetStatus(ctx, db, correlationID, remote)
}
