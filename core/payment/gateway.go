package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoGateway is returned when no gateway serves a payment method.
var ErrNoGateway = errors.New("no gateway configured for this payment method")

// Line is one course being charged.
type Line struct {
	CourseID string
	Title    string
	Amount   decimal.Decimal
}

// Charge is what a gateway is asked to collect.
type Charge struct {
	Method   Method
	Currency string
	Lines    []Line
}

func (c Charge) Total() decimal.Decimal {
	tot := decimal.Zero
	for _, l := range c.Lines {
		tot = tot.Add(l.Amount)
	}
	return tot
}

// Initiation is the gateway's answer to a charge. CorrelationID is the id
// the gateway will use in every later notification about it.
type Initiation struct {
	CorrelationID string
	Presentation  Presentation
}

// Gateway is an external payment provider.
type Gateway interface {
	Initiate(ctx context.Context, ch Charge) (Initiation, error)
	StatusOf(ctx context.Context, correlationID string) (Status, error)
}

// Router picks the gateway serving each payment method.
type Router struct {
	gateways map[Method]Gateway
}

func NewRouter(gateways map[Method]Gateway) *Router {
	return &Router{gateways: gateways}
}

func (r *Router) For(m Method) (Gateway, error) {
	gw, ok := r.gateways[m]
	if !ok || gw == nil {
		return nil, fmt.Errorf("%s: %w", m, ErrNoGateway)
	}
	return gw, nil
}
