package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/irsalhamdi/course-market/config"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// NewStripeAPI builds the stripe client. cfg.URL overrides the API host.
func NewStripeAPI(cfg config.Stripe) *stripecl.API {
	var backends *stripe.Backends
	if cfg.URL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL: stripe.String(cfg.URL),
			}),
		}
	}

	api := &stripecl.API{}
	api.Init(cfg.APISecret, backends)
	return api
}

// Stripe charges cards through hosted checkout sessions. The session id is
// the correlation id.
type Stripe struct {
	api *stripecl.API
	cfg config.Stripe
}

func NewStripe(api *stripecl.API, cfg config.Stripe) *Stripe {
	return &Stripe{api: api, cfg: cfg}
}

func (s *Stripe) Initiate(ctx context.Context, ch Charge) (Initiation, error) {
	li := make([]*stripe.CheckoutSessionLineItemParams, 0, len(ch.Lines))
	for _, l := range ch.Lines {
		li = append(li, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),

			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(strings.ToLower(ch.Currency)),
				TaxBehavior: stripe.String("inclusive"),
				UnitAmount:  stripe.Int64(l.Amount.Shift(2).IntPart()),

				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Title),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  li,
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return Initiation{}, fmt.Errorf("creating stripe session: %w", err)
	}

	return Initiation{
		CorrelationID: sess.ID,
		Presentation:  Presentation{RedirectURL: sess.URL},
	}, nil
}

func (s *Stripe) StatusOf(ctx context.Context, correlationID string) (Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(correlationID, params)
	if err != nil {
		return "", fmt.Errorf("fetching stripe session[%s]: %w", correlationID, err)
	}
	return sessionStatus(sess), nil
}

func sessionStatus(sess *stripe.CheckoutSession) Status {
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return Completed
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return Failed
	}
	return Pending
}

// Event verifies a webhook delivery and reads the session status it
// carries. A fully refunded charge is traced back to its session through the
// payment intent. ok is false for events that do not move a payment.
func (s *Stripe) Event(ctx context.Context, payload []byte, signature string) (correlationID string, st Status, ok bool, err error) {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return "", "", false, fmt.Errorf("cannot construct stripe event: %w", err)
	}

	switch event.Type {
	case "charge.refunded":
		return s.refund(ctx, event.Data.Raw)
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
	default:
		return "", "", false, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", "", false, fmt.Errorf("unable to decode stripe event: %w", err)
	}

	if sess.Mode != stripe.CheckoutSessionModePayment {
		return "", "", false, nil
	}

	switch event.Type {
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		st = Failed
	case "checkout.session.async_payment_succeeded":
		st = Completed
	default:
		st = sessionStatus(&sess)
	}

	if st == Pending {
		return "", "", false, nil
	}
	return sess.ID, st, true, nil
}

// refund maps a charge.refunded event onto the checkout session that created
// the charge. Partial refunds leave the payment completed.
func (s *Stripe) refund(ctx context.Context, raw json.RawMessage) (string, Status, bool, error) {
	var ch stripe.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return "", "", false, fmt.Errorf("unable to decode stripe charge: %w", err)
	}

	if !ch.Refunded || ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
		return "", "", false, nil
	}

	params := &stripe.CheckoutSessionListParams{PaymentIntent: stripe.String(ch.PaymentIntent.ID)}
	params.Context = ctx

	it := s.api.CheckoutSessions.List(params)
	if !it.Next() {
		if err := it.Err(); err != nil {
			return "", "", false, fmt.Errorf("finding stripe session for intent[%s]: %w", ch.PaymentIntent.ID, err)
		}
		return "", "", false, nil
	}
	return it.CheckoutSession().ID, Refunded, true, nil
}
