package cart

import (
	"time"

	"github.com/irsalhamdi/course-market/core/coupon"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string          `json:"id" db:"cart_id"`
	UserID    string          `json:"-" db:"user_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
	Items     []Item          `json:"items" db:"-"`
	Total     decimal.Decimal `json:"total" db:"-"`
}

// Item is one course in a cart. Price is the course price captured when
// the item was added and is never refreshed from the catalog.
type Item struct {
	ID        string          `json:"id" db:"item_id"`
	CartID    string          `json:"cartId" db:"cart_id"`
	CourseID  string          `json:"courseId" db:"course_id"`
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

type ItemNew struct {
	CourseID string `json:"courseId" validate:"required,uuid4"`
}

// Total sums the price snapshots of items. Coupons never take part.
func Total(items []Item) decimal.Decimal {
	tot := decimal.Zero
	for _, it := range items {
		tot = tot.Add(it.Price)
	}
	return tot
}

// Quote previews what the cart would cost with a coupon. It is not stored
// and does not use the coupon.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Coupon   coupon.Coupon   `json:"coupon"`
}

// NewQuote discounts each line the way checkout does, so the quoted total
// matches the sum of the payments checkout would record.
func NewQuote(items []Item, c coupon.Coupon) Quote {
	q := Quote{
		Subtotal: Total(items),
		Total:    decimal.Zero,
		Coupon:   c,
	}
	for _, it := range items {
		q.Total = q.Total.Add(c.Apply(it.Price))
	}
	q.Discount = q.Subtotal.Sub(q.Total)
	return q
}
