package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/internal/auth"
	"github.com/digikraal/ledgerview/internal/portfolio"
	"github.com/digikraal/ledgerview/internal/transactions"
	"github.com/digikraal/ledgerview/internal/users"
	pkgAuth "github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/normalize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	login      *auth.LoginResponse
	loginErr   error
	refresh    *auth.TokenPair
	refreshReq auth.RefreshRequest
	loggedOut  string
	sessionErr error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	s.refreshReq = req
	return s.refresh, s.sessionErr
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return s.sessionErr
}

type stubRegisterService struct {
	user       *users.UserDTO
	err        error
	registered auth.RegisterRequest
	provision  auth.ProvisionRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.registered = req
	return s.user, s.err
}

func (s *stubRegisterService) Provision(ctx context.Context, req auth.ProvisionRequest) (*users.UserDTO, error) {
	s.provision = req
	return s.user, s.err
}

type stubPortfolio struct {
	summary *portfolio.Summary
	err     error
}

func (s stubPortfolio) GetMetrics(ctx context.Context, identity pkgAuth.Identity) (*portfolio.Summary, error) {
	return s.summary, s.err
}

type stubTransactions struct {
	rows   []models.Transaction
	err    error
	params transactions.ListParams
}

func (s *stubTransactions) List(ctx context.Context, identity pkgAuth.Identity, params transactions.ListParams) ([]models.Transaction, error) {
	s.params = params
	return s.rows, s.err
}

func (s *stubTransactions) GetByItemNumber(ctx context.Context, identity pkgAuth.Identity, itemNumber string) (*models.Transaction, error) {
	for i := range s.rows {
		if s.rows[i].ItemNumber != nil && *s.rows[i].ItemNumber == itemNumber {
			return &s.rows[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
}

type stubLoader struct {
	user *models.User
	err  error
}

func (s stubLoader) LoadUser(ctx context.Context, identity pkgAuth.Identity) (*models.User, error) {
	return s.user, s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func withIdentity(req *http.Request, role enums.Role) *http.Request {
	identity := pkgAuth.Identity{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: role}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope: %s", rec.Body.String())
	return errBody["code"].(string)
}

func strPtr(v string) *string { return &v }

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}}
	handler := AuthLogin(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ana@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "access", rec.Header().Get(tokenHeader))
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "refresh", data["refresh_token"])
}

func TestAuthLoginValidationAndUnauthorized(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"bad"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ana@example.com","password":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestAuthRegisterCreatesAndLogsIn(t *testing.T) {
	reg := &stubRegisterService{user: &users.UserDTO{Email: "new@example.com", Role: enums.RoleInvestor}}
	svc := &stubAuthService{login: &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}}
	handler := AuthRegister(reg, svc, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"New","email":"new@example.com","password":"Secret123!"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "new@example.com", reg.registered.Email)
	assert.Equal(t, "access", rec.Header().Get(tokenHeader))
}

func TestAuthRegisterConflict(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(reg, &stubAuthService{}, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Dup","email":"dup@example.com","password":"Secret123!"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminProvisionUser(t *testing.T) {
	reg := &stubRegisterService{user: &users.UserDTO{ID: uuid.New(), Role: enums.RoleInvestor}}
	handler := AdminProvisionUser(reg, logger.Nop())

	body := `{"name":"Ana","email":"ana@example.com","password":"Secret123!","role":"Investor","total_investment_amount":"R400"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, reg.provision.TotalInvestmentAmount)
	assert.Equal(t, "R400", *reg.provision.TotalInvestmentAmount)
}

func TestAuthRefreshPassesBearerToken(t *testing.T) {
	svc := &stubAuthService{refresh: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	handler := AuthRefresh(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old-access", svc.refreshReq.AccessToken)
	assert.Equal(t, "old-refresh", svc.refreshReq.RefreshToken)
	assert.Equal(t, "new-access", rec.Header().Get(tokenHeader))
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	handler := AuthRefresh(&stubAuthService{}, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refresh_token":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-1", svc.loggedOut)
}

func TestMeReturnsDisplayName(t *testing.T) {
	loader := stubLoader{user: &models.User{ID: uuid.New(), Email: "ana@example.com", Name: strPtr("Ana Stored"), Role: enums.RoleInvestor}}
	handler := Me(loader, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), enums.RoleInvestor))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Ana Stored", data["displayName"])
}

func TestMeHidesMissingUser(t *testing.T) {
	loader := stubLoader{err: pkgerrors.New(pkgerrors.CodeUserNotFound, "no user record")}
	handler := Me(loader, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), enums.RoleInvestor))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestInvestorMetricsIncludesDisplay(t *testing.T) {
	svc := stubPortfolio{summary: &portfolio.Summary{
		Metrics: portfolio.Metrics{
			CapitalInvested: 400,
			TotalProfit:     16,
			AverageDaysHeld: 75,
			ROI:             0.04,
			AnnualizedROI:   0.2102,
		},
		InvestorName: "Ana",
		Transactions: 2,
	}}
	handler := InvestorMetrics(svc, normalize.NewCurrency("R"), logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), enums.RoleInvestor))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Ana", data["investorName"])
	assert.EqualValues(t, 2, data["transactionCount"])
	display := data["display"].(map[string]any)
	assert.Equal(t, "R400.00", display["capitalInvested"])
	assert.Equal(t, "4.0%", display["roi"])
	assert.Equal(t, "75", display["averageDaysHeld"])
}

func TestInvestorMetricsForbidden(t *testing.T) {
	svc := stubPortfolio{err: pkgerrors.New(pkgerrors.CodeForbidden, "metrics are only available to investors")}
	handler := InvestorMetrics(svc, nil, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), enums.RolePartner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListTransactionsWritesMeta(t *testing.T) {
	svc := &stubTransactions{rows: []models.Transaction{
		{ItemNumber: strPtr("1"), InvestorProfit: strPtr("R100")},
		{ItemNumber: strPtr("2"), InvestorProfit: strPtr("R50")},
	}}
	handler := ListTransactions(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/?filter=profit&dealCode=D1&dateFrom=2024-01-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(req, enums.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.TransactionFilterProfit, svc.params.Filter)
	assert.Equal(t, "D1", svc.params.DealCode)
	assert.Equal(t, "2024-01-01", svc.params.DateFrom)

	body := decode(t, rec)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["count"])
	assert.Equal(t, "profit", meta["filter"])
	rows := body["data"].([]any)
	first := rows[0].(map[string]any)
	assert.EqualValues(t, 100, first["amounts"].(map[string]any)["investorProfit"])
}

func TestListTransactionsRejectsBadQuery(t *testing.T) {
	svc := &stubTransactions{}
	handler := ListTransactions(svc, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/?dateTo=yesterday", nil), enums.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactionsStoreFailure(t *testing.T) {
	svc := &stubTransactions{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "query transactions")}
	handler := ListTransactions(svc, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), enums.RoleAdmin))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetTransactionByItemNumber(t *testing.T) {
	svc := &stubTransactions{rows: []models.Transaction{{ItemNumber: strPtr("A-7")}}}
	r := chi.NewRouter()
	r.Get("/transactions/{itemNumber}", func(w http.ResponseWriter, req *http.Request) {
		GetTransaction(svc, logger.Nop()).ServeHTTP(w, withIdentity(req, enums.RoleFarmer))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/A-7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "A-7", data["itemNumber"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/B-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, logger.Nop()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Ledgerview-Env"))

	rec = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}, logger.Nop()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
