package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/irsalhamdi/course-market/api"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/auth"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/core/payment"
	"github.com/irsalhamdi/course-market/core/user"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/random"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// testDB is shared by every test of the package. It stays nil when no
// docker daemon is reachable and the tests skip.
var testDB *sqlx.DB

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("docker unavailable: %v\n", err)
		return m.Run()
	}
	if err := pool.Client.Ping(); err != nil {
		fmt.Printf("docker unavailable: %v\n", err)
		return m.Run()
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env:        []string{"POSTGRES_PASSWORD=postgres", "POSTGRES_DB=market"},
	})
	if err != nil {
		fmt.Printf("starting postgres: %v\n", err)
		return 1
	}
	defer pool.Purge(res)
	res.Expire(600)

	cfg := config.DB{
		User:         "postgres",
		Password:     "postgres",
		Host:         res.GetHostPort("5432/tcp"),
		Name:         "market",
		MaxIdleConns: 2,
		MaxOpenConns: 20,
		DisableTLS:   true,
	}

	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		if err := database.StatusCheck(context.Background(), db); err != nil {
			db.Close()
			return err
		}
		testDB = db
		return nil
	})
	if err != nil {
		fmt.Printf("connecting to postgres: %v\n", err)
		return 1
	}
	defer testDB.Close()

	if err := database.Migrate(testDB); err != nil {
		fmt.Printf("migrating: %v\n", err)
		return 1
	}

	return m.Run()
}

const sandboxSecret = "test-sandbox-secret"

type TestEnv struct {
	*httptest.Server
	DB     *sqlx.DB
	Tokens *auth.Tokens

	category course.Category
	admin    string
}

// NewTestEnv serves the api over the shared database. card, when set,
// serves credit_card checkouts.
func NewTestEnv(t *testing.T, card payment.Gateway) *TestEnv {
	t.Helper()

	if testDB == nil {
		t.Skip("no docker daemon available")
	}

	gwCfg := config.Gateway{
		Timeout:       200 * time.Millisecond,
		Currency:      "BRL",
		SandboxSecret: sandboxSecret,
		PixExpiration: 30 * time.Minute,
		BoletoURL:     "https://boleto.test",
	}

	sandbox := payment.NewSandbox(gwCfg)
	gws := map[payment.Method]payment.Gateway{
		payment.Pix:    sandbox,
		payment.Boleto: sandbox,
	}
	if card != nil {
		gws[payment.CreditCard] = card
	}

	tokens := auth.NewTokens(config.Auth{Key: "test-key", Issuer: "course-market-test", TokenTTL: time.Hour})

	log := logrus.New()
	log.SetOutput(io.Discard)

	mux := api.APIMux(api.APIConfig{
		Log:            log,
		DB:             testDB,
		Tokens:         tokens,
		Gateways:       payment.NewRouter(gws),
		GatewayCfg:     gwCfg,
		Sandbox:        sandbox,
		CertificateURL: "https://market.test/certificates/verify",
	})

	env := &TestEnv{
		Server: httptest.NewServer(mux),
		DB:     testDB,
		Tokens: tokens,
	}
	t.Cleanup(env.Close)

	_, env.admin = env.seedUser(t, claims.RoleAdmin)
	env.do(t, http.MethodPost, "/admin/categories", env.admin,
		course.CategoryNew{Name: "Category " + digits(t, 8)}, http.StatusCreated, &env.category)

	return env
}

// seedUser stores a user with role and returns it with a bearer token.
func (env *TestEnv) seedUser(t *testing.T, role string) (user.User, string) {
	t.Helper()

	hash, err := user.HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           validate.GenerateID(),
		Name:         "User " + digits(t, 6),
		Email:        fmt.Sprintf("user%s@market.test", digits(t, 12)),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Create(context.Background(), env.DB, u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	tk, err := env.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		t.Fatal(err)
	}
	return u, tk.Token
}

// seedCourse creates a course priced at price with one module holding
// the given number of lessons.
func (env *TestEnv) seedCourse(t *testing.T, price string, lessons int) (course.Course, []course.Lesson) {
	t.Helper()

	var c course.Course
	env.do(t, http.MethodPost, "/admin/courses", env.admin, course.CourseNew{
		CategoryID:  env.category.ID,
		Title:       "Course " + digits(t, 10),
		Description: "A course.",
		Level:       course.Beginner,
		Price:       decimal.RequireFromString(price),
	}, http.StatusCreated, &c)

	var m course.Module
	env.do(t, http.MethodPost, "/admin/modules", env.admin, course.ModuleNew{
		CourseID: c.ID,
		Title:    "Module",
	}, http.StatusCreated, &m)

	ls := make([]course.Lesson, lessons)
	for i := range ls {
		env.do(t, http.MethodPost, "/admin/lessons", env.admin, course.LessonNew{
			ModuleID: m.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Order:    i,
		}, http.StatusCreated, &ls[i])
	}

	return c, ls
}

// do sends body as json with token as bearer, checks the status and
// decodes the response into out when out is not nil.
func (env *TestEnv) do(t *testing.T, method string, path string, token string, body any, status int, out any) {
	t.Helper()

	code, raw := env.send(t, method, path, token, body, nil)
	if code != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, code, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
}

func (env *TestEnv) send(t *testing.T, method string, path string, token string, body any, header http.Header) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	for k, vs := range header {
		r.Header[k] = vs
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	return w.StatusCode, raw
}

func digits(t *testing.T, n int) string {
	t.Helper()

	s, err := random.Digits(n)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
