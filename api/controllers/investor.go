package controllers

import (
	"net/http"

	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/api/responses"
	"github.com/digikraal/ledgerview/internal/portfolio"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/normalize"
)

type investorMetricsResponse struct {
	portfolio.Metrics
	InvestorName     string            `json:"investorName"`
	TransactionCount int               `json:"transactionCount"`
	Display          portfolio.Display `json:"display"`
}

// InvestorMetrics serves the caller's portfolio summary with a preformatted
// display block in the configured currency.
func InvestorMetrics(svc portfolio.Service, currency *normalize.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		summary, err := svc.GetMetrics(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, investorMetricsResponse{
			Metrics:          summary.Metrics,
			InvestorName:     summary.InvestorName,
			TransactionCount: summary.Transactions,
			Display:          summary.Metrics.Display(currency),
		})
	}
}
