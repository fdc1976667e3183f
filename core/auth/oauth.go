package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/user"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/random"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

const (
	stateKey = "oauth_state"
	nonceKey = "oauth_nonce"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders runs oidc discovery for every configured provider.
// Providers without a client id are skipped.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))

	for _, c := range cfgs {
		if c.Client == "" {
			continue
		}

		p, err := oidc.NewProvider(ctx, c.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider %s: %w", c.Name, err)
		}

		provs[c.Name] = Provider{
			oauth: oauth2.Config{
				ClientID:     c.Client,
				ClientSecret: c.Secret,
				RedirectURL:  c.RedirectURL,
				Endpoint:     p.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: c.Client}),
		}
	}

	return provs, nil
}

func HandleOauthLogin(session *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating state: %w", err)
		}

		nonce, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating nonce: %w", err)
		}

		session.Put(ctx, stateKey, state)
		session.Put(ctx, nonceKey, nonce)

		http.Redirect(w, r, p.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
		return nil
	}
}

// HandleOauthCallback finishes the login, creating the user on first
// sight, and sends the browser back to redirectURL with a bearer token in
// the fragment.
func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, provs map[string]Provider, tokens *Tokens, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state := session.PopString(ctx, stateKey)
		nonce := session.PopString(ctx, nonceKey)
		if state == "" || r.URL.Query().Get("state") != state {
			return weberr.NotAuthorized(errors.New("oauth state mismatch"))
		}

		tok, err := p.oauth.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("exchanging oauth code: %w", err))
		}

		raw, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.NotAuthorized(errors.New("id_token missing from oauth response"))
		}

		idt, err := p.verifier.Verify(ctx, raw)
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("verifying id token: %w", err))
		}

		if idt.Nonce != nonce {
			return weberr.NotAuthorized(errors.New("oauth nonce mismatch"))
		}

		var info struct {
			Email    string `json:"email"`
			Verified bool   `json:"email_verified"`
			Name     string `json:"name"`
		}
		if err := idt.Claims(&info); err != nil {
			return fmt.Errorf("reading id token claims: %w", err)
		}

		if info.Email == "" || !info.Verified {
			return weberr.NotAuthorized(errors.New("oauth email is not verified"))
		}

		u, err := findOrCreate(ctx, db, strings.ToLower(info.Email), info.Name)
		if err != nil {
			return err
		}

		bt, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			return err
		}

		frag := make(url.Values)
		frag.Set("token", bt.Token)
		frag.Set("expiresAt", bt.ExpiresAt.Format(time.RFC3339))

		http.Redirect(w, r, redirectURL+"#"+frag.Encode(), http.StatusFound)
		return nil
	}
}

func findOrCreate(ctx context.Context, db *sqlx.DB, email string, name string) (user.User, error) {
	u, err := user.FetchByEmail(ctx, db, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrDBNotFound) {
		return user.User{}, err
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := time.Now().UTC()
	u = user.User{
		ID:        validate.GenerateID(),
		Name:      name,
		Email:     email,
		Role:      claims.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Create(ctx, db, u); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return user.FetchByEmail(ctx, db, email)
		}
		return user.User{}, fmt.Errorf("creating oauth user: %w", err)
	}
	return u, nil
}
