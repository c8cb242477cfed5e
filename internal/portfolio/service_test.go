package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/internal/scope"
	"github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubLedger struct {
	byInvestor map[string][]models.Transaction
	err        error
	calls      int
}

func (s *stubLedger) QueryTransactions(ctx context.Context, p ledger.Predicate) ([]models.Transaction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	name, ok := p.Value(ledger.FieldInvestorName)
	if !ok {
		return nil, errors.New("unscoped query")
	}
	return s.byInvestor[name], nil
}

type stubUsers map[string]*models.User

func (s stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo *stubLedger) Service {
	t.Helper()
	resolver, err := scope.NewResolver(stubUsers{
		"thandi@example.com": {
			Email:                 "thandi@example.com",
			Name:                  strPtr("Thandi"),
			TotalInvestmentAmount: strPtr("R10,000.00"),
		},
		"pieter@example.com": {Email: "pieter@example.com", Name: strPtr("Pieter")},
	}, nil)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{Repo: repo, Scopes: resolver})
	require.NoError(t, err)
	return svc
}

func investor(email, name string) auth.Identity {
	return auth.Identity{ID: uuid.New(), Email: email, Name: name, Role: enums.RoleInvestor}
}

func TestGetMetricsScenario(t *testing.T) {
	repo := &stubLedger{byInvestor: map[string][]models.Transaction{
		"Thandi": {
			{InvestorProfit: strPtr("R500.00"), Days: strPtr("60")},
			{InvestorProfit: strPtr("R-100.00"), Days: strPtr("90")},
		},
		"Pieter": {
			{InvestorProfit: strPtr("R9,999.00"), Days: strPtr("1")},
		},
	}}
	svc := newTestService(t, repo)

	summary, err := svc.GetMetrics(context.Background(), investor("thandi@example.com", "T"))
	require.NoError(t, err)
	assert.Equal(t, "Thandi", summary.InvestorName)
	assert.Equal(t, 2, summary.Transactions)
	assert.InDelta(t, 10000, summary.CapitalInvested, 1e-9)
	assert.InDelta(t, 400, summary.TotalProfit, 1e-9)
	assert.InDelta(t, 0.04, summary.ROI, 1e-12)
	assert.InDelta(t, 75, summary.AverageDaysHeld, 1e-9)
	assert.InDelta(t, 0.2102, summary.AnnualizedROI, 1e-3)
}

func TestGetMetricsMissingCapitalIsZeroROI(t *testing.T) {
	repo := &stubLedger{byInvestor: map[string][]models.Transaction{
		"Pieter": {{InvestorProfit: strPtr("R100"), Days: strPtr("30")}},
	}}
	svc := newTestService(t, repo)

	summary, err := svc.GetMetrics(context.Background(), investor("pieter@example.com", "Pieter"))
	require.NoError(t, err)
	assert.Zero(t, summary.CapitalInvested)
	assert.Zero(t, summary.ROI)
	assert.Zero(t, summary.AnnualizedROI)
	assert.InDelta(t, 100, summary.TotalProfit, 1e-9)
}

func TestGetMetricsRejectsNonInvestors(t *testing.T) {
	repo := &stubLedger{}
	svc := newTestService(t, repo)

	for _, role := range []enums.Role{enums.RoleAdmin, enums.RoleFarmer, enums.RolePartner, "Auditor"} {
		_, err := svc.GetMetrics(context.Background(), auth.Identity{ID: uuid.New(), Email: "thandi@example.com", Role: role})
		assert.Truef(t, pkgerrors.Is(err, pkgerrors.CodeForbidden), "role %q: got %v", role, err)
	}
	assert.Zero(t, repo.calls)
}

func TestGetMetricsUnknownUser(t *testing.T) {
	svc := newTestService(t, &stubLedger{})

	_, err := svc.GetMetrics(context.Background(), investor("ghost@example.com", "Ghost"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUserNotFound))
}

func TestGetMetricsStoreFailure(t *testing.T) {
	storeErr := errors.New("ledger offline")
	svc := newTestService(t, &stubLedger{err: storeErr})

	_, err := svc.GetMetrics(context.Background(), investor("thandi@example.com", "Thandi"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.ErrorIs(t, err, storeErr)
}

type fixedScope struct{ scope scope.Scope }

func (f fixedScope) Resolve(ctx context.Context, identity auth.Identity, filters scope.Filters) (*scope.Scope, error) {
	return &f.scope, nil
}

func TestGetMetricsMalformedScopeIsValidation(t *testing.T) {
	repo := &stubLedger{}
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Scopes: fixedScope{scope: scope.Scope{
			Predicate: ledger.All().Where(ledger.Field("password_hash"), "x"),
			User:      &models.User{Name: strPtr("Thandi")},
		}},
	})
	require.NoError(t, err)

	_, err = svc.GetMetrics(context.Background(), investor("thandi@example.com", "Thandi"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Zero(t, repo.calls)
}
