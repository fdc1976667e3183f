package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/payment"
)

func gatewayConfig(card string) config.Config {
	var cfg config.Config
	cfg.Gateway = config.Gateway{
		Card:          card,
		Timeout:       time.Second,
		Currency:      "BRL",
		SandboxSecret: "secret",
		PixExpiration: time.Minute,
		BoletoURL:     "https://boleto.test",
	}
	cfg.Stripe = config.Stripe{APISecret: "sk_test_123"}
	return cfg
}

func TestMakeGatewaysStripe(t *testing.T) {
	gws, strp, sandbox, err := makeGateways(gatewayConfig("stripe"))
	if err != nil {
		t.Fatal(err)
	}
	if strp == nil {
		t.Fatal("stripe must be returned when it serves credit_card")
	}
	if sandbox == nil {
		t.Fatal("sandbox must always be returned")
	}

	gw, err := gws.For(payment.CreditCard)
	if err != nil {
		t.Fatal(err)
	}
	if gw != payment.Gateway(strp) {
		t.Fatal("credit_card must be served by stripe")
	}
}

func TestMakeGatewaysPaypal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/oauth2/token" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := gatewayConfig("paypal")
	cfg.Paypal = config.Paypal{ClientID: "client", Secret: "secret", URL: srv.URL}

	gws, strp, _, err := makeGateways(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strp != nil {
		t.Fatal("stripe must not be returned when paypal serves credit_card")
	}

	gw, err := gws.For(payment.CreditCard)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gw.(*payment.Paypal); !ok {
		t.Fatalf("credit_card must be served by paypal, got %T", gw)
	}
}

func TestMakeGatewaysUnknown(t *testing.T) {
	if _, _, _, err := makeGateways(gatewayConfig("cash")); err == nil {
		t.Fatal("an unknown card gateway must be rejected")
	}
}
