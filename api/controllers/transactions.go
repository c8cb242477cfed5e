package controllers

import (
	"net/http"

	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/api/responses"
	"github.com/digikraal/ledgerview/api/validators"
	"github.com/digikraal/ledgerview/internal/transactions"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/types"
	"github.com/go-chi/chi/v5"
)

// ListTransactions returns the caller's scoped ledger rows.
func ListTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		query, err := validators.ParseTransactionQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := query.TransactionFilter()
		rows, err := svc.List(r.Context(), identity, transactions.ListParams{
			Filter:   filter,
			DealCode: query.DealCode,
			DateFrom: query.DateFrom,
			DateTo:   query.DateTo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, transactions.FromModels(rows), types.ListMeta{
			Count:  len(rows),
			Filter: filter.String(),
		})
	}
}

// GetTransaction returns one ledger row by item number, inside the caller's scope.
func GetTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		itemNumber, err := validators.PathParam(chi.URLParam(r, "itemNumber"), "itemNumber", 128)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetByItemNumber(r.Context(), identity, itemNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactions.FromModel(*row))
	}
}
