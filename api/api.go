package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-market/api/middleware"
	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/admin"
	"github.com/irsalhamdi/course-market/core/auth"
	"github.com/irsalhamdi/course-market/core/cart"
	"github.com/irsalhamdi/course-market/core/certificate"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/coupon"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/core/payment"
	"github.com/irsalhamdi/course-market/core/review"
	"github.com/irsalhamdi/course-market/core/user"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Tokens     *auth.Tokens
	Limiter    *rate.Limiter
	Gateways   *payment.Router
	GatewayCfg config.Gateway
	// Stripe is set only when it serves credit_card; its webhook is then
	// routed. PayPal payments complete through /payments/{id}/sync.
	Stripe           *payment.Stripe
	Sandbox          *payment.Sandbox
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	CertificateURL   string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Tokens)
	staff := auth.Authorize(claims.RoleAdmin, claims.RoleInstructor)
	admn := auth.Authorize(claims.RoleAdmin)

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodGet, "/health", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := database.StatusCheck(ctx, cfg.DB); err != nil {
			return weberr.Unavailable(err)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	})

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Tokens), limit)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Tokens), limit)
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers), limit)
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.Tokens, cfg.LoginRedirectURL), limit)

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/current", user.HandleUpdateProfile(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/current/password", user.HandleChangePassword(cfg.DB), authen, limit)

	a.Handle(http.MethodGet, "/categories", course.HandleListCategories(cfg.DB))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/courses/slug/{slug}", course.HandleShowBySlug(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{id}/modules", course.HandleListModules(cfg.DB))
	a.Handle(http.MethodGet, "/modules/{id}/lessons", course.HandleListLessons(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{id}/reviews", review.HandleList(cfg.DB))

	a.Handle(http.MethodPost, "/courses/{id}/reviews", review.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodPost, "/courses/{id}/enroll", enrollment.HandleEnroll(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{id}/progress", enrollment.HandleListProgress(cfg.DB), authen)
	a.Handle(http.MethodPost, "/lessons/{id}/progress", enrollment.HandleRecordProgress(cfg.DB), authen)
	a.Handle(http.MethodGet, "/lessons/{id}/materials", enrollment.HandleListMaterials(cfg.DB), authen)
	a.Handle(http.MethodGet, "/my-courses", enrollment.HandleListMine(cfg.DB), authen)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.DB), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart/items/{id}", cart.HandleDeleteItem(cfg.DB), authen)
	a.Handle(http.MethodPost, "/cart/quote", cart.HandleQuote(cfg.DB), authen)
	a.Handle(http.MethodPost, "/coupons/validate", coupon.HandleValidate(cfg.DB), authen)

	a.Handle(http.MethodPost, "/checkout", payment.HandleCheckout(cfg.DB, cfg.Gateways, cfg.GatewayCfg), authen)
	a.Handle(http.MethodGet, "/payments", payment.HandleList(cfg.DB), authen)
	a.Handle(http.MethodGet, "/payments/{id}", payment.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/payments/{id}/sync", payment.HandleSync(cfg.DB, cfg.Gateways, cfg.GatewayCfg), authen)
	if cfg.Stripe != nil {
		a.Handle(http.MethodPost, "/webhooks/stripe", payment.HandleStripeWebhook(cfg.DB, cfg.Stripe))
	}
	if cfg.Sandbox != nil {
		a.Handle(http.MethodPost, "/webhooks/sandbox", payment.HandleSandboxWebhook(cfg.DB, cfg.Sandbox))
	}

	a.Handle(http.MethodPost, "/certificates", certificate.HandleIssue(cfg.DB, cfg.CertificateURL), authen)
	a.Handle(http.MethodGet, "/certificates", certificate.HandleList(cfg.DB), authen)
	a.Handle(http.MethodGet, "/certificates/verify/{code}", certificate.HandleVerify(cfg.DB))

	a.Handle(http.MethodPost, "/admin/courses", course.HandleCreate(cfg.DB), authen, staff)
	a.Handle(http.MethodPut, "/admin/courses/{id}", course.HandleUpdate(cfg.DB), authen, staff)
	a.Handle(http.MethodDelete, "/admin/courses/{id}", course.HandleDelete(cfg.DB), authen, staff)
	a.Handle(http.MethodPost, "/admin/modules", course.HandleCreateModule(cfg.DB), authen, staff)
	a.Handle(http.MethodPost, "/admin/lessons", course.HandleCreateLesson(cfg.DB), authen, staff)
	a.Handle(http.MethodPost, "/admin/materials", course.HandleCreateMaterial(cfg.DB), authen, staff)
	a.Handle(http.MethodPost, "/admin/categories", course.HandleCreateCategory(cfg.DB), authen, admn)

	a.Handle(http.MethodGet, "/admin/coupons", coupon.HandleList(cfg.DB), authen, admn)
	a.Handle(http.MethodPost, "/admin/coupons", coupon.HandleCreate(cfg.DB), authen, admn)
	a.Handle(http.MethodPost, "/admin/enrollments", enrollment.HandleAdminEnroll(cfg.DB), authen, admn)

	a.Handle(http.MethodGet, "/admin/users", user.HandleList(cfg.DB), authen, admn)
	a.Handle(http.MethodGet, "/admin/users/{id}", user.HandleShow(cfg.DB), authen, admn)
	a.Handle(http.MethodPut, "/admin/users/{id}/role", user.HandleUpdateRole(cfg.DB), authen, admn)

	a.Handle(http.MethodGet, "/admin/dashboard", admin.HandleDashboard(cfg.DB), authen, admn)
	a.Handle(http.MethodGet, "/admin/reports/sales", admin.HandleSalesReport(cfg.DB), authen, admn)

	if cfg.Session != nil {
		return cfg.Session.LoadAndSave(a.Router)
	}
	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
