package controllers

import (
	"context"
	"net/http"

	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/api/responses"
	"github.com/digikraal/ledgerview/internal/scope"
	"github.com/digikraal/ledgerview/internal/users"
	pkgAuth "github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/db/models"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
)

type userLoader interface {
	LoadUser(ctx context.Context, identity pkgAuth.Identity) (*models.User, error)
}

type meResponse struct {
	Identity    pkgAuth.Identity `json:"identity"`
	DisplayName string           `json:"displayName"`
	User        *users.UserDTO   `json:"user"`
}

// Me returns the caller's identity with the name dashboards greet them by.
func Me(loader userLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		user, err := loader.LoadUser(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, meResponse{
			Identity:    identity,
			DisplayName: scope.DisplayName(user, identity),
			User:        users.FromModel(user),
		})
	}
}
