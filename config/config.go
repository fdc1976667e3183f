package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
)

type Config struct {
	conf.Version
	Web         Web
	Cors        Cors
	DB          DB
	Auth        Auth
	Oauth       Oauth
	Gateway     Gateway
	Stripe      Stripe
	Paypal      Paypal
	Certificate Certificate
	Rate        Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:market"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:10"`
	DisableTLS   bool   `conf:"default:true"`
	Migrate      bool   `conf:"default:true"`
}

type Auth struct {
	Key      string        `conf:"default:change-me,mask"`
	Issuer   string        `conf:"default:course-market"`
	TokenTTL time.Duration `conf:"default:72h"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:10s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000/login"`
	Google           OauthProvider
}

type OauthProvider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string
}

type Gateway struct {
	// Card selects the provider serving credit_card checkouts: stripe or paypal.
	Card          string        `conf:"default:stripe"`
	Timeout       time.Duration `conf:"default:10s"`
	Currency      string        `conf:"default:BRL"`
	SandboxSecret string        `conf:"default:sandbox-secret,mask"`
	PixExpiration time.Duration `conf:"default:30m"`
	BoletoURL     string        `conf:"default:https://boleto.example.com"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
	SuccessURL    string `conf:"default:http://localhost:3000/checkout/success"`
	CancelURL     string `conf:"default:http://localhost:3000/checkout/cancel"`
	URL           string
}

type Paypal struct {
	ClientID  string
	Secret    string `conf:"mask"`
	URL       string `conf:"default:https://api-m.sandbox.paypal.com"`
	ReturnURL string `conf:"default:http://localhost:3000/checkout/success"`
	CancelURL string `conf:"default:http://localhost:3000/checkout/cancel"`
}

type Certificate struct {
	BaseURL string `conf:"default:http://localhost:8000/certificates/verify"`
}

type Rate struct {
	Burst  int     `conf:"default:5"`
	RPS    float64 `conf:"default:1"`
	Expiry int     `conf:"default:10"`
}
