package random

import (
	"strings"
	"testing"
)

func TestCode(t *testing.T) {
	c, err := Code("CERT-", 12)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(c, "CERT-") {
		t.Fatalf("missing prefix: %s", c)
	}
	if len(c) != len("CERT-")+12 {
		t.Fatalf("unexpected length %d for %s", len(c), c)
	}
	for _, r := range strings.TrimPrefix(c, "CERT-") {
		if !strings.ContainsRune(upper, r) {
			t.Fatalf("unexpected character %q in %s", r, c)
		}
	}
}

func TestDigits(t *testing.T) {
	d, err := Digits(44)
	if err != nil {
		t.Fatal(err)
	}
	if len(d) != 44 {
		t.Fatalf("expected 44 digits, got %d", len(d))
	}
	for _, r := range d {
		if r < '0' || r > '9' {
			t.Fatalf("unexpected character %q", r)
		}
	}
}

func TestStringSecureDiffers(t *testing.T) {
	a, err := StringSecure(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := StringSecure(32)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two random strings should not collide")
	}
}
