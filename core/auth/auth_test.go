package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/claims"
)

func testTokens() *Tokens {
	return NewTokens(config.Auth{Key: "test-key", Issuer: "course-market", TokenTTL: time.Hour})
}

func TestTokens(t *testing.T) {
	tk := testTokens()

	tok, err := tk.Issue("6b0e2a36-8a5a-4b4e-9a59-3f1f6b3b7c10", claims.RoleInstructor)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tk.Verify(tok.Token)
	if err != nil {
		t.Fatal(err)
	}

	exp := claims.Claims{UserID: "6b0e2a36-8a5a-4b4e-9a59-3f1f6b3b7c10", Role: claims.RoleInstructor}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("unexpected claims (-want +got):\n%s", diff)
	}
}

func TestTokensRejected(t *testing.T) {
	tk := testTokens()

	other := NewTokens(config.Auth{Key: "other-key", Issuer: "course-market", TokenTTL: time.Hour})
	forged, _ := other.Issue("u1", claims.RoleAdmin)
	if _, err := tk.Verify(forged.Token); err == nil {
		t.Fatal("a token signed with another key must be rejected")
	}

	foreign := NewTokens(config.Auth{Key: "test-key", Issuer: "someone-else", TokenTTL: time.Hour})
	tok, _ := foreign.Issue("u1", claims.RoleAdmin)
	if _, err := tk.Verify(tok.Token); err == nil {
		t.Fatal("a token of another issuer must be rejected")
	}

	old := testTokens()
	old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := old.Issue("u1", claims.RoleUser)
	if _, err := tk.Verify(expired.Token); err == nil {
		t.Fatal("an expired token must be rejected")
	}

	if _, err := tk.Verify("not-a-token"); err == nil {
		t.Fatal("garbage must be rejected")
	}
}

func TestAuthenticate(t *testing.T) {
	tk := testTokens()
	tok, _ := tk.Issue("u1", claims.RoleUser)

	var seen claims.Claims
	h := Authenticate(tk)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		seen, _ = claims.Get(ctx)
		return nil
	})

	tests := map[string]bool{
		"":                      false,
		"Basic dXNlcjpwYXNz":    false,
		"Bearer":                false,
		"Bearer garbage":        false,
		"Bearer " + tok.Token:   true,
		"bearer   " + tok.Token: true,
	}

	for header, ok := range tests {
		seen = claims.Claims{}
		r := httptest.NewRequest(http.MethodGet, "/users/current", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}

		err := h(context.Background(), httptest.NewRecorder(), r)
		if ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", header, err)
			}
			if seen.UserID != "u1" {
				t.Fatalf("%q: claims not set", header)
			}
			continue
		}
		if !weberr.IsKind(err, weberr.KindUnauthenticated) {
			t.Fatalf("%q: expected unauthenticated, got %v", header, err)
		}
	}
}

func TestAuthorize(t *testing.T) {
	h := Authorize(claims.RoleAdmin, claims.RoleInstructor)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	})

	r := httptest.NewRequest(http.MethodPost, "/admin/courses", nil)

	err := h(context.Background(), httptest.NewRecorder(), r)
	if !weberr.IsKind(err, weberr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated without claims, got %v", err)
	}

	ctx := claims.Set(context.Background(), claims.Claims{UserID: "u1", Role: claims.RoleUser})
	if err := h(ctx, httptest.NewRecorder(), r); !weberr.IsKind(err, weberr.KindForbidden) {
		t.Fatalf("expected forbidden for users, got %v", err)
	}

	ctx = claims.Set(context.Background(), claims.Claims{UserID: "u2", Role: claims.RoleInstructor})
	if err := h(ctx, httptest.NewRecorder(), r); err != nil {
		t.Fatalf("instructors must pass: %v", err)
	}
}
