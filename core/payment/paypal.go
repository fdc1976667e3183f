package payment

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/config"
	"github.com/plutov/paypal/v4"
)

// Paypal charges cards through paypal orders. The order id is the
// correlation id; the buyer approves it on the approve link.
type Paypal struct {
	client *paypal.Client
	cfg    config.Paypal
}

func NewPaypal(client *paypal.Client, cfg config.Paypal) *Paypal {
	return &Paypal{client: client, cfg: cfg}
}

func (p *Paypal) Initiate(ctx context.Context, ch Charge) (Initiation, error) {
	items := make([]paypal.Item, 0, len(ch.Lines))
	for _, l := range ch.Lines {
		items = append(items, paypal.Item{
			Quantity: "1",
			Name:     l.Title,

			UnitAmount: &paypal.Money{
				Currency: ch.Currency,
				Value:    l.Amount.StringFixed(2),
			},
		})
	}

	tot := ch.Total().StringFixed(2)
	units := []paypal.PurchaseUnitRequest{{
		Items: items,

		Amount: &paypal.PurchaseUnitAmount{
			Currency: ch.Currency,
			Value:    tot,

			Breakdown: &paypal.PurchaseUnitAmountBreakdown{ItemTotal: &paypal.Money{
				Currency: ch.Currency,
				Value:    tot,
			}},
		},
	}}

	app := &paypal.ApplicationContext{
		ReturnURL: p.cfg.ReturnURL,
		CancelURL: p.cfg.CancelURL,
	}

	ord, err := p.client.CreateOrder(ctx, "CAPTURE", units, nil, app)
	if err != nil {
		return Initiation{}, fmt.Errorf("creating paypal order: %w", err)
	}

	var approve string
	for _, l := range ord.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			approve = l.Href
			break
		}
	}

	return Initiation{
		CorrelationID: ord.ID,
		Presentation:  Presentation{RedirectURL: approve},
	}, nil
}

// StatusOf reads the order and captures it once the buyer approved it.
func (p *Paypal) StatusOf(ctx context.Context, correlationID string) (Status, error) {
	ord, err := p.client.GetOrder(ctx, correlationID)
	if err != nil {
		return "", fmt.Errorf("fetching paypal order[%s]: %w", correlationID, err)
	}

	switch ord.Status {
	case "COMPLETED":
		return Completed, nil
	case "VOIDED":
		return Failed, nil
	case "APPROVED":
	default:
		return Pending, nil
	}

	resp, err := p.client.CaptureOrder(ctx, correlationID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", fmt.Errorf("capturing paypal order[%s]: %w", correlationID, err)
	}

	if resp.Status != "COMPLETED" {
		return Pending, nil
	}
	return Completed, nil
}
