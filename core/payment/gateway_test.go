package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-market/config"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	mock "github.com/stripe/stripe-mock/param"
)

func sandboxConfig() config.Gateway {
	return config.Gateway{
		Currency:      "BRL",
		Timeout:       time.Second,
		SandboxSecret: "s3cret",
		PixExpiration: 30 * time.Minute,
		BoletoURL:     "https://boleto.example.com/view",
	}
}

func testCharge(m Method) Charge {
	return Charge{
		Method:   m,
		Currency: "BRL",
		Lines: []Line{
			{CourseID: "c1", Title: "Go", Amount: decimal.RequireFromString("80")},
			{CourseID: "c2", Title: "SQL", Amount: decimal.RequireFromString("49.90")},
		},
	}
}

func TestSandboxPix(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sb := NewSandbox(sandboxConfig())
	sb.now = func() time.Time { return now }

	in, err := sb.Initiate(context.Background(), testCharge(Pix))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(in.CorrelationID, "PAG") || len(in.CorrelationID) != 19 {
		t.Fatalf("unexpected payment id %q", in.CorrelationID)
	}
	if !strings.Contains(in.Presentation.QRCode, "amount=129.90") {
		t.Fatalf("qr payload misses the amount: %s", in.Presentation.QRCode)
	}
	if in.Presentation.ExpiresAt == nil || !in.Presentation.ExpiresAt.Equal(now.Add(30*time.Minute)) {
		t.Fatalf("unexpected expiration %v", in.Presentation.ExpiresAt)
	}
	if in.Presentation.Barcode != "" || in.Presentation.RedirectURL != "" {
		t.Fatalf("pix must only carry pix fields: %+v", in.Presentation)
	}
}

func TestSandboxBoleto(t *testing.T) {
	sb := NewSandbox(sandboxConfig())

	in, err := sb.Initiate(context.Background(), testCharge(Boleto))
	if err != nil {
		t.Fatal(err)
	}

	if len(in.Presentation.Barcode) != 44 {
		t.Fatalf("unexpected barcode %q", in.Presentation.Barcode)
	}
	if _, err := strconv.ParseUint(in.Presentation.Barcode[:18], 10, 64); err != nil {
		t.Fatalf("barcode must be numeric: %q", in.Presentation.Barcode)
	}
	if in.Presentation.BoletoURL != "https://boleto.example.com/view/"+in.CorrelationID {
		t.Fatalf("unexpected boleto url %q", in.Presentation.BoletoURL)
	}

	other, err := sb.Initiate(context.Background(), testCharge(Boleto))
	if err != nil {
		t.Fatal(err)
	}
	if other.CorrelationID == in.CorrelationID {
		t.Fatal("payment ids must not repeat")
	}
}

func TestSandboxRejects(t *testing.T) {
	sb := NewSandbox(sandboxConfig())

	if _, err := sb.Initiate(context.Background(), testCharge(CreditCard)); !errors.Is(err, ErrNoGateway) {
		t.Fatalf("expected ErrNoGateway for cards, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sb.Initiate(ctx, testCharge(Pix)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a canceled context error, got %v", err)
	}

	if !sb.Authentic("s3cret") {
		t.Fatal("the configured secret must be accepted")
	}
	for _, s := range []string{"", "s3cre", "S3CRET"} {
		if sb.Authentic(s) {
			t.Fatalf("secret %q must be rejected", s)
		}
	}
}

func TestStripeInitiate(t *testing.T) {
	var lines int
	var amounts []int64

	r := mux.NewRouter()
	r.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		for _, li := range params["line_items"].(map[string]any) {
			it := li.(map[string]any)
			pd := it["price_data"].(map[string]any)
			if pd["currency"] != "brl" || it["quantity"] != "1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			n, err := strconv.ParseInt(pd["unit_amount"].(string), 10, 64)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			amounts = append(amounts, n)
			lines++
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cs_test_123",
			"object": "checkout.session",
			"url":    "https://checkout.stripe.com/c/pay/cs_test_123",
		})
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	defer srv.Close()

	cfg := config.Stripe{APISecret: "sk_test_123", URL: srv.URL}
	s := NewStripe(NewStripeAPI(cfg), cfg)

	in, err := s.Initiate(context.Background(), testCharge(CreditCard))
	if err != nil {
		t.Fatal(err)
	}

	if in.CorrelationID != "cs_test_123" {
		t.Fatalf("unexpected session id %q", in.CorrelationID)
	}
	if in.Presentation.RedirectURL != "https://checkout.stripe.com/c/pay/cs_test_123" {
		t.Fatalf("unexpected redirect %q", in.Presentation.RedirectURL)
	}
	if lines != 2 {
		t.Fatalf("expected 2 line items, got %d", lines)
	}

	var tot int64
	for _, a := range amounts {
		tot += a
	}
	if tot != 12990 {
		t.Fatalf("expected 12990 cents, got %d", tot)
	}
}

func signedEvent(t *testing.T, secret string, typ string, sess map[string]any) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(sess)
	if err != nil {
		t.Fatal(err)
	}

	evt := map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        typ,
		"data":        map[string]any{"object": json.RawMessage(raw)},
	}

	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   b,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return b, signed.Header
}

func TestStripeEvent(t *testing.T) {
	cfg := config.Stripe{WebhookSecret: "whsec_test"}
	s := NewStripe(nil, cfg)

	tests := []struct {
		name string
		typ  string
		sess map[string]any
		id   string
		st   Status
		ok   bool
	}{
		{
			name: "paid session",
			typ:  "checkout.session.completed",
			sess: map[string]any{"id": "cs_1", "mode": "payment", "payment_status": "paid"},
			id:   "cs_1",
			st:   Completed,
			ok:   true,
		},
		{
			name: "unpaid completion waits",
			typ:  "checkout.session.completed",
			sess: map[string]any{"id": "cs_2", "mode": "payment", "payment_status": "unpaid"},
		},
		{
			name: "expired session",
			typ:  "checkout.session.expired",
			sess: map[string]any{"id": "cs_3", "mode": "payment", "status": "expired"},
			id:   "cs_3",
			st:   Failed,
			ok:   true,
		},
		{
			name: "async success",
			typ:  "checkout.session.async_payment_succeeded",
			sess: map[string]any{"id": "cs_4", "mode": "payment"},
			id:   "cs_4",
			st:   Completed,
			ok:   true,
		},
		{
			name: "subscription ignored",
			typ:  "checkout.session.completed",
			sess: map[string]any{"id": "cs_5", "mode": "subscription", "payment_status": "paid"},
		},
		{
			name: "partial refund ignored",
			typ:  "charge.refunded",
			sess: map[string]any{"id": "ch_1", "object": "charge", "payment_intent": "pi_1", "refunded": false},
		},
		{
			name: "other events ignored",
			typ:  "customer.created",
			sess: map[string]any{"id": "cus_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sig := signedEvent(t, cfg.WebhookSecret, tt.typ, tt.sess)

			id, st, ok, err := s.Event(context.Background(), b, sig)
			if err != nil {
				t.Fatal(err)
			}
			if id != tt.id || st != tt.st || ok != tt.ok {
				t.Fatalf("expected (%q, %q, %v), got (%q, %q, %v)", tt.id, tt.st, tt.ok, id, st, ok)
			}
		})
	}

	b, sig := signedEvent(t, "whsec_other", "checkout.session.completed", tests[0].sess)
	if _, _, _, err := s.Event(context.Background(), b, sig); err == nil {
		t.Fatal("expected a signature error")
	}
}

func TestStripeRefund(t *testing.T) {
	var intent string

	r := mux.NewRouter()
	r.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		intent = r.URL.Query().Get("payment_intent")

		data := []any{}
		if intent == "pi_1" {
			data = append(data, map[string]any{"id": "cs_9", "object": "checkout.session", "mode": "payment"})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object":   "list",
			"url":      "/v1/checkout/sessions",
			"has_more": false,
			"data":     data,
		})
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	defer srv.Close()

	cfg := config.Stripe{APISecret: "sk_test_123", URL: srv.URL, WebhookSecret: "whsec_test"}
	s := NewStripe(NewStripeAPI(cfg), cfg)

	charge := map[string]any{"id": "ch_1", "object": "charge", "payment_intent": "pi_1", "refunded": true}
	b, sig := signedEvent(t, cfg.WebhookSecret, "charge.refunded", charge)

	id, st, ok, err := s.Event(context.Background(), b, sig)
	if err != nil {
		t.Fatal(err)
	}
	if intent != "pi_1" {
		t.Fatalf("expected lookup by intent pi_1, got %q", intent)
	}
	if id != "cs_9" || st != Refunded || !ok {
		t.Fatalf("expected (cs_9, refunded, true), got (%q, %q, %v)", id, st, ok)
	}

	charge["payment_intent"] = "pi_unknown"
	b, sig = signedEvent(t, cfg.WebhookSecret, "charge.refunded", charge)

	if _, _, ok, err := s.Event(context.Background(), b, sig); err != nil || ok {
		t.Fatalf("expected an unmatched refund to be ignored, got ok=%v err=%v", ok, err)
	}
}

func TestPaypal(t *testing.T) {
	var value string
	status := "CREATED"

	r := mux.NewRouter()
	r.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "A21AA",
			"token_type":   "Bearer",
			"expires_in":   32400,
		})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		var pu struct {
			Units []paypal.PurchaseUnitRequest `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pu); err != nil || len(pu.Units) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		value = pu.Units[0].Amount.Value

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(paypal.Order{
			ID:     "PP-1",
			Status: "CREATED",
			Links: []paypal.Link{
				{Rel: "self", Href: "https://api.paypal.test/v2/checkout/orders/PP-1"},
				{Rel: "approve", Href: "https://paypal.test/checkoutnow?token=PP-1"},
			},
		})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v2/checkout/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(paypal.Order{ID: mux.Vars(r)["id"], Status: status})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(paypal.CaptureOrderResponse{ID: mux.Vars(r)["id"], Status: "COMPLETED"})
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	defer srv.Close()

	cl, err := paypal.NewClient("client", "secret", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPaypal(cl, config.Paypal{ReturnURL: "http://localhost/ok", CancelURL: "http://localhost/ko"})

	in, err := p.Initiate(context.Background(), testCharge(CreditCard))
	if err != nil {
		t.Fatal(err)
	}
	if in.CorrelationID != "PP-1" || in.Presentation.RedirectURL != "https://paypal.test/checkoutnow?token=PP-1" {
		t.Fatalf("unexpected initiation %+v", in)
	}
	if value != "129.90" {
		t.Fatalf("unexpected order value %q", value)
	}

	tests := map[string]Status{
		"CREATED":   Pending,
		"VOIDED":    Failed,
		"COMPLETED": Completed,
		"APPROVED":  Completed,
	}
	for s, exp := range tests {
		status = s
		got, err := p.StatusOf(context.Background(), "PP-1")
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if got != exp {
			t.Errorf("%s: expected %s, got %s", s, exp, got)
		}
	}
}
