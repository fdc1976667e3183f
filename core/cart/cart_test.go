package cart

import (
	"testing"

	"github.com/irsalhamdi/course-market/core/coupon"
	"github.com/shopspring/decimal"
)

func items(prices ...string) []Item {
	its := make([]Item, 0, len(prices))
	for _, p := range prices {
		its = append(its, Item{Price: decimal.RequireFromString(p)})
	}
	return its
}

func TestTotal(t *testing.T) {
	if got := Total(nil); !got.IsZero() {
		t.Fatalf("empty cart must total zero, got %s", got)
	}

	got := Total(items("80", "49.90", "0.10"))
	if !got.Equal(decimal.RequireFromString("130")) {
		t.Fatalf("expected 130, got %s", got)
	}
}

func TestNewQuote(t *testing.T) {
	its := items("80", "49.90")
	q := NewQuote(its, coupon.Coupon{Code: "SAVE10", DiscountPercent: 10})

	if !q.Subtotal.Equal(decimal.RequireFromString("129.90")) {
		t.Fatalf("unexpected subtotal %s", q.Subtotal)
	}
	// 72 + 44.91
	if !q.Total.Equal(decimal.RequireFromString("116.91")) {
		t.Fatalf("unexpected total %s", q.Total)
	}
	if !q.Discount.Equal(decimal.RequireFromString("12.99")) {
		t.Fatalf("unexpected discount %s", q.Discount)
	}

	if !Total(its).Equal(q.Subtotal) {
		t.Fatal("quoting must not change the cart total")
	}
}
