package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

// SandboxSecretHeader carries the shared secret of sandbox webhooks.
const SandboxSecretHeader = "X-Sandbox-Secret"

func HandleCheckout(db *sqlx.DB, gws *Router, cfg config.Gateway) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in CheckoutNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		rc, err := Checkout(ctx, db, gws, cfg, clm.UserID, in)
		if err != nil {
			return fmt.Errorf("checking out cart of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, rc, http.StatusCreated)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ps, err := History(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("listing payments of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		d, err := Lookup(ctx, db, web.Param(r, "id"), clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

// HandleSync reconciles a payment with its gateway, for when a webhook was
// missed.
func HandleSync(db *sqlx.DB, gws *Router, cfg config.Gateway) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		d, err := Sync(ctx, db, gws, cfg, web.Param(r, "id"), clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleStripeWebhook(db *sqlx.DB, s *Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return weberr.BadRequest(errors.New("received stripe event is not signed"))
		}

		id, st, ok, err := s.Event(ctx, b, sig)
		if err != nil {
			return weberr.BadRequest(err)
		}

		if !ok {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if _, err := SetStatus(ctx, db, id, st); err != nil {
			return fmt.Errorf("applying stripe event: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleSandboxWebhook(db *sqlx.DB, s *Sandbox) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if !s.Authentic(r.Header.Get(SandboxSecretHeader)) {
			return weberr.NotAuthorized(errors.New("sandbox event secret mismatch"))
		}

		var ev SandboxEvent
		if err := web.Decode(w, r, &ev); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ev); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		if _, err := SetStatus(ctx, db, ev.PaymentID, ev.Status); err != nil {
			return fmt.Errorf("applying sandbox event: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
