package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func TestKinds(t *testing.T) {
	base := errors.New("course already in cart")

	tests := []struct {
		name   string
		err    error
		kind   string
		status int
		body   ErrorResponse
	}{
		{"not found", NotFound(base), KindNotFound, http.StatusNotFound, ErrorResponse{KindNotFound, "the resource could not be found"}},
		{"conflict", Conflict(base), KindConflict, http.StatusConflict, ErrorResponse{KindConflict, "course already in cart"}},
		{"invalid", Invalid(base), KindInvalid, http.StatusUnprocessableEntity, ErrorResponse{KindInvalid, "course already in cart"}},
		{"forbidden", Forbidden(base), KindForbidden, http.StatusForbidden, ErrorResponse{KindForbidden, "course already in cart"}},
		{"unauthenticated", NotAuthorized(base), KindUnauthenticated, http.StatusUnauthorized, ErrorResponse{KindUnauthenticated, "not authorized to access resource"}},
		{"unavailable", Unavailable(base), KindUnavailable, http.StatusServiceUnavailable, ErrorResponse{KindUnavailable, "an external service is unavailable, try again later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("adding item: %w", tt.err)

			if got := KindOf(wrapped); got != tt.kind {
				t.Fatalf("expected kind %q, got %q", tt.kind, got)
			}

			body, status, ok := Response(wrapped)
			if !ok {
				t.Fatal("expected a response to be attached")
			}
			if status != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, status)
			}
			if diff := cmp.Diff(&tt.body, body); diff != "" {
				t.Fatalf("unexpected body (-want +got):\n%s", diff)
			}

			if !errors.Is(wrapped, base) {
				t.Fatal("expected the original error to stay in the chain")
			}
		})
	}
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	if got := KindOf(err); got != KindInternal {
		t.Fatalf("expected %q, got %q", KindInternal, got)
	}
	if Is(err) {
		t.Fatal("plain error must not be reported as classified")
	}
	if IsKind(nil, KindInternal) {
		t.Fatal("nil error has no kind")
	}
}

func TestWithFields(t *testing.T) {
	inner := Wrap(errors.New("missing"), WithFields(logrus.Fields{"course_id": "c1", "step": "fetch"}))
	err := NotFound(fmt.Errorf("adding item: %w", inner), WithFields(logrus.Fields{"step": "add"}))

	fields, ok := Fields(err)
	if !ok {
		t.Fatal("expected fields")
	}

	exp := logrus.Fields{"course_id": "c1", "step": "add"}
	if diff := cmp.Diff(exp, fields); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}

	if _, ok := Fields(errors.New("plain")); ok {
		t.Fatal("plain error has no fields")
	}
}
