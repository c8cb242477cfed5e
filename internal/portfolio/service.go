package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/internal/scope"
	"github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/metrics"
	"github.com/digikraal/ledgerview/pkg/normalize"
)

type Repository interface {
	QueryTransactions(ctx context.Context, p ledger.Predicate) ([]models.Transaction, error)
}

type ScopeResolver interface {
	Resolve(ctx context.Context, identity auth.Identity, filters scope.Filters) (*scope.Scope, error)
}

// Summary is the metrics report for one investor.
type Summary struct {
	Metrics
	InvestorName string
	Transactions int
}

type Service interface {
	GetMetrics(ctx context.Context, identity auth.Identity) (*Summary, error)
}

type ServiceParams struct {
	Repo    Repository
	Scopes  ScopeResolver
	Logger  *logger.Logger
	Metrics *metrics.LedgerMetrics
}

type service struct {
	repo    Repository
	scopes  ScopeResolver
	logg    *logger.Logger
	metrics *metrics.LedgerMetrics
}

const operationGetMetrics = "get_metrics"

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if params.Scopes == nil {
		return nil, fmt.Errorf("scope resolver required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		scopes:  params.Scopes,
		logg:    logg,
		metrics: params.Metrics,
	}, nil
}

// GetMetrics is only available to investors; capital comes from the
// investor's user record and rows from their scoped ledger.
func (s *service) GetMetrics(ctx context.Context, identity auth.Identity) (*Summary, error) {
	summary, err := s.getMetrics(ctx, identity)
	if err != nil {
		s.metrics.IncFailure(operationGetMetrics, string(pkgerrors.CodeOf(err)))
	}
	return summary, err
}

func (s *service) getMetrics(ctx context.Context, identity auth.Identity) (*Summary, error) {
	if identity.Role != enums.RoleInvestor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "metrics are only available to investors")
	}

	resolved, err := s.scopes.Resolve(ctx, identity, scope.Filters{})
	if err != nil {
		return nil, err
	}
	if resolved.User == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "investor scope resolved without a user record")
	}

	if err := resolved.Predicate.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ledger query")
	}

	start := time.Now()
	rows, err := s.repo.QueryTransactions(ctx, resolved.Predicate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query transactions")
	}

	capital := normalize.MoneyField(resolved.User.TotalInvestmentAmount)
	computed := ComputeMetrics(capital, rows)

	elapsed := time.Since(start)
	s.metrics.ObserveSuccess(operationGetMetrics, len(rows), elapsed)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"rows":        len(rows),
		"duration_ms": elapsed.Milliseconds(),
	})
	s.logg.Info(ctx, "portfolio.metrics.computed")

	return &Summary{
		Metrics:      computed,
		InvestorName: resolved.DisplayName,
		Transactions: len(rows),
	}, nil
}
