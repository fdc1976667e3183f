package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID              string    `json:"id" db:"coupon_id"`
	Code            string    `json:"code" db:"code"`
	DiscountPercent int       `json:"discountPercent" db:"discount_percent"`
	ValidFrom       time.Time `json:"validFrom" db:"valid_from"`
	ValidUntil      time.Time `json:"validUntil" db:"valid_until"`
	MaxUses         *int      `json:"maxUses" db:"max_uses"`
	CurrentUses     int       `json:"currentUses" db:"current_uses"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

type CouponNew struct {
	Code            string    `json:"code" validate:"required,alphanum,max=20"`
	DiscountPercent int       `json:"discountPercent" validate:"required,gte=1,lte=100"`
	ValidFrom       time.Time `json:"validFrom" validate:"required"`
	ValidUntil      time.Time `json:"validUntil" validate:"required,gtfield=ValidFrom"`
	MaxUses         *int      `json:"maxUses" validate:"omitempty,gt=0"`
}

// Normalize maps user input onto the stored form of a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether the coupon can be used at now: inside its window
// and, when capped, with uses left.
func (c Coupon) Valid(now time.Time) bool {
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	return c.MaxUses == nil || c.CurrentUses < *c.MaxUses
}

// Apply returns amount reduced by the coupon's percentage, rounded to cents.
func (c Coupon) Apply(amount decimal.Decimal) decimal.Decimal {
	keep := decimal.NewFromInt(int64(100 - c.DiscountPercent))
	return amount.Mul(keep).Div(decimal.NewFromInt(100)).Round(2)
}
