package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending   Status = "pending"
	Completed Status = "completed"
	Failed    Status = "failed"
	Refunded  Status = "refunded"
)

type Method string

const (
	CreditCard Method = "credit_card"
	Pix        Method = "pix"
	Boleto     Method = "boleto"
)

var (
	ErrUnknownMethod     = errors.New("payment method must be one of credit_card, pix or boleto")
	ErrEmptyCart         = errors.New("no items to checkout")
	ErrInvalidTransition = errors.New("payment status cannot change this way")
)

func (m Method) Valid() bool {
	switch m {
	case CreditCard, Pix, Boleto:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case Pending, Completed, Failed, Refunded:
		return true
	}
	return false
}

// Transition reports whether moving from s to next changes anything. Moving
// to the current status is a no-op; unsupported moves fail.
func (s Status) Transition(next Status) (bool, error) {
	if s == next {
		return false, nil
	}

	switch {
	case s == Pending && (next == Completed || next == Failed):
		return true, nil
	case s == Completed && next == Refunded:
		return true, nil
	}
	return false, ErrInvalidTransition
}

// Payment is one paid course. A checkout writes one row per cart line, all
// sharing the gateway's CorrelationID.
type Payment struct {
	ID            string          `json:"id" db:"payment_id"`
	CorrelationID string          `json:"paymentId" db:"correlation_id"`
	UserID        string          `json:"userId" db:"user_id"`
	CourseID      string          `json:"courseId" db:"course_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	Status        Status          `json:"status" db:"status"`
	Method        Method          `json:"paymentMethod" db:"method"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

type StatusUp struct {
	CorrelationID string    `db:"correlation_id"`
	Status        Status    `db:"status"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type CheckoutNew struct {
	Method     Method `json:"paymentMethod" validate:"required"`
	CouponCode string `json:"couponCode" validate:"omitempty,max=20"`
}

// Presentation is what the buyer needs to finish paying. Only the fields of
// the chosen method are set. It is never stored.
type Presentation struct {
	RedirectURL string     `json:"redirectUrl,omitempty"`
	QRCode      string     `json:"qrCode,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Barcode     string     `json:"barcode,omitempty"`
	BoletoURL   string     `json:"boletoUrl,omitempty"`
}

// Receipt is the answer to a checkout.
type Receipt struct {
	PaymentID    string          `json:"paymentId"`
	Method       Method          `json:"paymentMethod"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Presentation Presentation    `json:"presentation"`
	Payments     []Payment       `json:"payments"`
}

// Details groups every row of one correlation id.
type Details struct {
	PaymentID string          `json:"paymentId"`
	Status    Status          `json:"status"`
	Method    Method          `json:"paymentMethod"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Payments  []Payment       `json:"payments"`
}

func newDetails(ps []Payment) Details {
	d := Details{
		PaymentID: ps[0].CorrelationID,
		Status:    ps[0].Status,
		Method:    ps[0].Method,
		Currency:  ps[0].Currency,
		Amount:    decimal.Zero,
		Payments:  ps,
	}
	for _, p := range ps {
		d.Amount = d.Amount.Add(p.Amount)
	}
	return d
}
