package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/internal/scope"
	"github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/metrics"
)

// Repository is the read surface of the ledger store.
type Repository interface {
	QueryTransactions(ctx context.Context, p ledger.Predicate) ([]models.Transaction, error)
}

// ScopeResolver turns an identity into a ledger predicate.
type ScopeResolver interface {
	Resolve(ctx context.Context, identity auth.Identity, filters scope.Filters) (*scope.Scope, error)
}

type ListParams struct {
	Filter   enums.TransactionFilter
	DealCode string
	DateFrom string
	DateTo   string
}

// Service lists the ledger rows visible to an identity.
type Service interface {
	List(ctx context.Context, identity auth.Identity, params ListParams) ([]models.Transaction, error)
	GetByItemNumber(ctx context.Context, identity auth.Identity, itemNumber string) (*models.Transaction, error)
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

const (
	operationList         = "list_transactions"
	operationGetByItemNum = "get_transaction"
)

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

func (s *service) List(ctx context.Context, identity auth.Identity, params ListParams) ([]models.Transaction, error) {
	rows, err := s.list(ctx, identity, params)
	if err != nil {
		s.metrics.IncFailure(operationList, string(pkgerrors.CodeOf(err)))
	}
	return rows, err
}

func (s *service) list(ctx context.Context, identity auth.Identity, params ListParams) ([]models.Transaction, error) {
	if !params.Filter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid filter").
			WithDetails(map[string]any{"filter": params.Filter.String()})
	}

	resolved, err := s.scopes.Resolve(ctx, identity, scope.Filters{
		DealCode: params.DealCode,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	})
	if err != nil {
		return nil, err
	}

	if err := checkPredicate(resolved.Predicate); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.repo.QueryTransactions(ctx, resolved.Predicate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query transactions")
	}
	filtered := ApplyFilter(rows, params.Filter)

	elapsed := time.Since(start)
	s.metrics.ObserveSuccess(operationList, len(rows), elapsed)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"rows":        len(rows),
		"returned":    len(filtered),
		"filter":      params.Filter.String(),
		"duration_ms": elapsed.Milliseconds(),
	})
	s.logg.Debug(ctx, "transactions.listed")

	return filtered, nil
}

func (s *service) GetByItemNumber(ctx context.Context, identity auth.Identity, itemNumber string) (*models.Transaction, error) {
	row, err := s.getByItemNumber(ctx, identity, itemNumber)
	if err != nil {
		s.metrics.IncFailure(operationGetByItemNum, string(pkgerrors.CodeOf(err)))
	}
	return row, err
}

func (s *service) getByItemNumber(ctx context.Context, identity auth.Identity, itemNumber string) (*models.Transaction, error) {
	itemNumber = strings.TrimSpace(itemNumber)
	if itemNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item number is required")
	}

	resolved, err := s.scopes.Resolve(ctx, identity, scope.Filters{})
	if err != nil {
		return nil, err
	}

	predicate := resolved.Predicate.Where(ledger.FieldItemNumber, itemNumber)
	if err := checkPredicate(predicate); err != nil {
		return nil, err
	}
	rows, err := s.repo.QueryTransactions(ctx, predicate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query transaction")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return &rows[0], nil
}

// checkPredicate keeps malformed queries from being reported as store failures.
func checkPredicate(p ledger.Predicate) error {
	if err := p.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ledger query")
	}
	return nil
}
