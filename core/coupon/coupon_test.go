package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValid(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	three := 3

	base := Coupon{
		Code:            "SAVE10",
		DiscountPercent: 10,
		ValidFrom:       now.Add(-24 * time.Hour),
		ValidUntil:      now.Add(24 * time.Hour),
	}

	tests := []struct {
		name string
		mod  func(c *Coupon)
		exp  bool
	}{
		{"inside window, uncapped", func(c *Coupon) {}, true},
		{"not started", func(c *Coupon) { c.ValidFrom = now.Add(time.Hour) }, false},
		{"expired", func(c *Coupon) { c.ValidUntil = now.Add(-time.Hour) }, false},
		{"window edges are inclusive", func(c *Coupon) { c.ValidFrom, c.ValidUntil = now, now }, true},
		{"uses left", func(c *Coupon) { c.MaxUses, c.CurrentUses = &three, 2 }, true},
		{"uses exhausted", func(c *Coupon) { c.MaxUses, c.CurrentUses = &three, 3 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mod(&c)
			if got := c.Valid(now); got != tt.exp {
				t.Fatalf("expected %v, got %v", tt.exp, got)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		percent int
		amount  string
		exp     string
	}{
		{10, "100", "90"},
		{15, "80", "68"},
		{33, "49.90", "33.43"},
		{100, "120", "0"},
	}

	for _, tt := range tests {
		c := Coupon{DiscountPercent: tt.percent}
		got := c.Apply(decimal.RequireFromString(tt.amount))
		if !got.Equal(decimal.RequireFromString(tt.exp)) {
			t.Errorf("%d%% of %s: expected %s, got %s", tt.percent, tt.amount, tt.exp, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  save10 "); got != "SAVE10" {
		t.Fatalf("unexpected code %q", got)
	}
}
