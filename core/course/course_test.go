package course

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectivePrice(t *testing.T) {
	c := Course{Price: decimal.NewFromInt(100)}
	if !c.EffectivePrice().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected list price, got %s", c.EffectivePrice())
	}
	if c.Free() {
		t.Fatal("a priced course is not free")
	}

	c.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	if !c.EffectivePrice().Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected discount price, got %s", c.EffectivePrice())
	}

	c.DiscountPrice = decimal.NewNullDecimal(decimal.Zero)
	if !c.Free() {
		t.Fatal("a zero discount price makes the course free")
	}
}

func TestCourseUpApply(t *testing.T) {
	c := Course{
		Title:         "Go",
		Price:         decimal.NewFromInt(100),
		DiscountPrice: decimal.NewNullDecimal(decimal.NewFromInt(80)),
	}

	title := "Go in practice"
	price := decimal.NewFromInt(120)
	CourseUp{Title: &title, Price: &price}.Apply(&c)

	if c.Title != title {
		t.Fatalf("title not applied: %s", c.Title)
	}
	if !c.Price.Equal(price) {
		t.Fatalf("price not applied: %s", c.Price)
	}
	if !c.DiscountPrice.Valid {
		t.Fatal("discount must be left alone when not sent")
	}

	CourseUp{ClearDiscount: true}.Apply(&c)
	if c.DiscountPrice.Valid {
		t.Fatal("discount must be cleared")
	}
}

func TestMaterialTypeOf(t *testing.T) {
	tests := map[string]MaterialType{
		"https://cdn.example.com/slides/intro.PPTX": Presentation,
		"https://cdn.example.com/a/notes.pdf?v=2":   Document,
		"https://cdn.example.com/data.csv":          Spreadsheet,
		"https://cdn.example.com/code.zip":          Archive,
		"https://cdn.example.com/image.png":         Other,
		"https://go.dev/doc":                        Link,
	}

	for in, exp := range tests {
		if got := MaterialTypeOf(in); got != exp {
			t.Errorf("%s: expected %s, got %s", in, exp, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/courses?level=beginner&min_price=10&max_price=99.90&min_rating=4", nil)

	f, err := parseFilter(r)
	if err != nil {
		t.Fatal(err)
	}

	if f.Level != Beginner {
		t.Fatalf("unexpected level %s", f.Level)
	}
	if f.MinPrice == nil || !f.MinPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected min price %v", f.MinPrice)
	}
	if f.MaxPrice == nil || !f.MaxPrice.Equal(decimal.RequireFromString("99.90")) {
		t.Fatalf("unexpected max price %v", f.MaxPrice)
	}
	if f.MinRating == nil || *f.MinRating != 4 {
		t.Fatalf("unexpected min rating %v", f.MinRating)
	}

	bad := httptest.NewRequest("GET", "/courses?min_price=cheap", nil)
	if _, err := parseFilter(bad); err == nil {
		t.Fatal("expected an error for a malformed price")
	}
}
