package validate

import (
	"testing"

	"github.com/shopspring/decimal"
)

type priced struct {
	Title    string           `json:"title" validate:"required"`
	Price    decimal.Decimal  `json:"price" validate:"gte=0"`
	Discount *decimal.Decimal `json:"discountPrice" validate:"omitempty,gte=0"`
}

func TestCheck(t *testing.T) {
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name string
		val  priced
		ok   bool
	}{
		{"valid", priced{Title: "Go", Price: decimal.NewFromInt(100)}, true},
		{"missing title", priced{Price: decimal.NewFromInt(100)}, false},
		{"negative price", priced{Title: "Go", Price: neg}, false},
		{"negative discount", priced{Title: "Go", Price: decimal.NewFromInt(1), Discount: &neg}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.val)
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID(GenerateID()); err != nil {
		t.Fatalf("generated id must be valid: %v", err)
	}
	if err := CheckID("not-an-id"); err == nil {
		t.Fatal("expected an error for a malformed id")
	}
}
