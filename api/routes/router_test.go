package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/digikraal/ledgerview/internal/auth"
	"github.com/digikraal/ledgerview/internal/portfolio"
	"github.com/digikraal/ledgerview/internal/transactions"
	"github.com/digikraal/ledgerview/internal/users"
	pkgAuth "github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/auth/session"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubRateStore struct {
	stubPinger
	allowed bool
}

func (s stubRateStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if s.allowed {
		return true, 1, nil
	}
	return false, limit + 1, nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	return &auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessToken string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{Email: req.Email}, nil
}

func (stubRegisterService) Provision(ctx context.Context, req auth.ProvisionRequest) (*users.UserDTO, error) {
	return &users.UserDTO{Email: req.Email}, nil
}

type stubPortfolioService struct{}

func (stubPortfolioService) GetMetrics(ctx context.Context, identity pkgAuth.Identity) (*portfolio.Summary, error) {
	return &portfolio.Summary{InvestorName: identity.Name}, nil
}

type stubTransactionsService struct{}

func (stubTransactionsService) List(ctx context.Context, identity pkgAuth.Identity, params transactions.ListParams) ([]models.Transaction, error) {
	return nil, nil
}

func (stubTransactionsService) GetByItemNumber(ctx context.Context, identity pkgAuth.Identity, itemNumber string) (*models.Transaction, error) {
	return &models.Transaction{ItemNumber: &itemNumber}, nil
}

type stubLoader struct{}

func (stubLoader) LoadUser(ctx context.Context, identity pkgAuth.Identity) (*models.User, error) {
	name := identity.Name
	return &models.User{ID: identity.ID, Email: identity.Email, Name: &name, Role: identity.Role}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:  time.Minute,
			LoginIPLimit: 5,
		},
		Currency: config.CurrencyConfig{Marker: "R"},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(cfg *config.Config, redisClient rateLimitStore, obs Observability) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		redisClient,
		stubSessionChecker{},
		stubAuthService{},
		stubRegisterService{},
		stubPortfolioService{},
		stubTransactionsService{},
		stubLoader{},
		obs,
	)
}

func serve(router http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(testConfig(), nil, Observability{})

	if resp := serve(router, http.MethodGet, "/health/live", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/health/ready", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestReadyReportsRedisOutage(t *testing.T) {
	router := newTestRouter(testConfig(), stubRateStore{stubPinger: stubPinger{err: errors.New("down")}, allowed: true}, Observability{})

	resp := serve(router, http.MethodGet, "/health/ready", "", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis is down got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil, Observability{})

	for _, target := range []string{"/api/v1/me", "/api/v1/transactions", "/api/v1/investor/metrics"} {
		if resp := serve(router, http.MethodGet, target, "", nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token for %s got %d", target, resp.Code)
		}
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, Observability{})
	token := buildToken(t, cfg, enums.RolePartner)

	for _, target := range []string{"/api/v1/me", "/api/v1/transactions", "/api/v1/transactions/IT-7"} {
		if resp := serve(router, http.MethodGet, target, token, nil); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", target, resp.Code)
		}
	}
}

func TestInvestorMetricsRequiresInvestorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, Observability{})

	resp := serve(router, http.MethodGet, "/api/v1/investor/metrics", buildToken(t, cfg, enums.RoleFarmer), nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for farmer got %d", resp.Code)
	}

	resp = serve(router, http.MethodGet, "/api/v1/investor/metrics", buildToken(t, cfg, enums.RoleInvestor), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for investor got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, Observability{})
	payload := `{"name":"Pat","email":"pat@example.com","password":"longenough","role":"Partner"}`

	resp := serve(router, http.MethodPost, "/api/v1/admin/users", buildToken(t, cfg, enums.RoleInvestor), strings.NewReader(payload))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	resp = serve(router, http.MethodPost, "/api/v1/admin/users", buildToken(t, cfg, enums.RoleAdmin), strings.NewReader(payload))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin got %d", resp.Code)
	}
}

func TestLoginIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), stubRateStore{allowed: true}, Observability{})

	resp := serve(router, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d", resp.Code)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	router := newTestRouter(testConfig(), stubRateStore{allowed: false}, Observability{})

	resp := serve(router, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 when limited got %d", resp.Code)
	}
}

func TestMetricsEndpointExposesRequestSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(testConfig(), nil, Observability{HTTP: metrics.NewHTTPMetrics(reg), Gatherer: reg})

	serve(router, http.MethodGet, "/health/live", "", nil)

	resp := serve(router, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "ledgerview_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	reg := prometheus.NewRegistry()
	router := newTestRouter(cfg, nil, Observability{Gatherer: reg})

	if resp := serve(router, http.MethodGet, "/metrics", "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when metrics disabled got %d", resp.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := newTestRouter(testConfig(), nil, Observability{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header got %q", got)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "ana@example.com",
		Name:   "Ana",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
