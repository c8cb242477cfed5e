package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digikraal/ledgerview/api/controllers"
	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/internal/auth"
	"github.com/digikraal/ledgerview/internal/portfolio"
	"github.com/digikraal/ledgerview/internal/transactions"
	pkgAuth "github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/auth/session"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/metrics"
	"github.com/digikraal/ledgerview/pkg/normalize"
)

type rateLimitStore interface {
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type userLoader interface {
	LoadUser(ctx context.Context, identity pkgAuth.Identity) (*models.User, error)
}

// Observability bundles the optional metrics wiring. Zero values disable it.
type Observability struct {
	HTTP     *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient rateLimitStore,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	portfolioService portfolio.Service,
	transactionsService transactions.Service,
	loader userLoader,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTP),
	)

	currency := normalize.NewCurrency(cfg.Currency.Marker)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	var limiter rateLimitStore
	if redisClient != nil {
		deps["redis"] = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})

	if cfg.Metrics.Enabled && obs.Gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Get("/me", controllers.Me(loader, logg))

		r.Route("/investor", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleInvestor))
			r.Get("/metrics", controllers.InvestorMetrics(portfolioService, currency, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(transactionsService, logg))
			r.Get("/{itemNumber}", controllers.GetTransaction(transactionsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
			r.Post("/users", controllers.AdminProvisionUser(registerService, logg))
		})
	})

	return r
}
