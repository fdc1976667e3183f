package test

import (
	"net/http"
	"testing"

	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/user"
)

func TestUpdateProfile(t *testing.T) {
	env := NewTestEnv(t, nil)
	u, tk := env.seedUser(t, claims.RoleUser)

	name := "Renamed " + digits(t, 4)
	bio := "Teaches Go."
	env.do(t, http.MethodPut, "/users/current", tk, user.ProfileUp{Name: &name, Bio: &bio}, http.StatusOK, nil)

	var got user.User
	env.do(t, http.MethodGet, "/users/current", tk, nil, http.StatusOK, &got)
	if got.Name != name || got.Bio != bio {
		t.Fatalf("profile not stored, got name %q bio %q", got.Name, got.Bio)
	}
	if got.Email != u.Email {
		t.Fatalf("email must not change, got %q", got.Email)
	}

	bad := "not a url"
	env.do(t, http.MethodPut, "/users/current", tk, user.ProfileUp{ImageURL: &bad}, http.StatusBadRequest, nil)
	env.do(t, http.MethodPut, "/users/current", "", user.ProfileUp{Name: &name}, http.StatusUnauthorized, nil)
}

func TestChangePassword(t *testing.T) {
	env := NewTestEnv(t, nil)
	u, tk := env.seedUser(t, claims.RoleUser)

	env.do(t, http.MethodPut, "/users/current/password", tk,
		user.PasswordUp{CurrentPassword: "wrong-password", NewPassword: "new-password-1"}, http.StatusForbidden, nil)

	env.do(t, http.MethodPut, "/users/current/password", tk,
		user.PasswordUp{CurrentPassword: "password123", NewPassword: "short"}, http.StatusBadRequest, nil)

	env.do(t, http.MethodPut, "/users/current/password", tk,
		user.PasswordUp{CurrentPassword: "password123", NewPassword: "new-password-1"}, http.StatusNoContent, nil)

	env.do(t, http.MethodPost, "/auth/login", "",
		user.UserLogin{Email: u.Email, Password: "password123"}, http.StatusUnauthorized, nil)
	env.do(t, http.MethodPost, "/auth/login", "",
		user.UserLogin{Email: u.Email, Password: "new-password-1"}, http.StatusOK, nil)
}
