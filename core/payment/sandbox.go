package payment

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"time"

	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/random"
)

// Sandbox serves pix and boleto locally. It issues the payment id and the
// presentation data itself; status changes arrive on its webhook.
type Sandbox struct {
	cfg config.Gateway
	now func() time.Time
}

func NewSandbox(cfg config.Gateway) *Sandbox {
	return &Sandbox{cfg: cfg, now: time.Now}
}

func (s *Sandbox) Initiate(ctx context.Context, ch Charge) (Initiation, error) {
	if err := ctx.Err(); err != nil {
		return Initiation{}, err
	}

	id, err := random.Code("PAG", 16)
	if err != nil {
		return Initiation{}, fmt.Errorf("generating payment id: %w", err)
	}

	switch ch.Method {
	case Pix:
		exp := s.now().UTC().Add(s.cfg.PixExpiration)

		q := make(url.Values)
		q.Set("id", id)
		q.Set("amount", ch.Total().StringFixed(2))
		q.Set("currency", ch.Currency)

		return Initiation{
			CorrelationID: id,
			Presentation: Presentation{
				QRCode:    "pix://pay?" + q.Encode(),
				ExpiresAt: &exp,
			},
		}, nil

	case Boleto:
		bar, err := random.Digits(44)
		if err != nil {
			return Initiation{}, fmt.Errorf("generating barcode: %w", err)
		}

		u, err := url.JoinPath(s.cfg.BoletoURL, id)
		if err != nil {
			return Initiation{}, fmt.Errorf("building boleto url: %w", err)
		}

		return Initiation{
			CorrelationID: id,
			Presentation:  Presentation{Barcode: bar, BoletoURL: u},
		}, nil
	}

	return Initiation{}, fmt.Errorf("%s: %w", ch.Method, ErrNoGateway)
}

// StatusOf has nothing to ask: sandbox payments only move on webhooks.
func (s *Sandbox) StatusOf(ctx context.Context, correlationID string) (Status, error) {
	return Pending, nil
}

// Authentic reports whether secret matches the configured webhook secret.
func (s *Sandbox) Authentic(secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.SandboxSecret)) == 1
}

// SandboxEvent is the body of a sandbox webhook delivery.
type SandboxEvent struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Status    Status `json:"status" validate:"required"`
}
